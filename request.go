package main

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v32/github"
	"golang.org/x/oauth2"
)

// commandRequest files the member's text as a GitHub issue on the repo
// named by GITHUB_REPO.
func commandRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if cfg.GithubToken == "" {
		reply(s, i, "Feature requests are not configured on this instance.")
		return
	}
	owner, repo, ok := strings.Cut(cfg.GithubRepo, "/")
	if !ok {
		log.Println("request: bad GITHUB_REPO", cfg.GithubRepo)
		reply(s, i, "Feature requests are misconfigured on this instance.")
		return
	}

	body := optionMap(i)["text"].StringValue()
	deferReply(s, i)

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GithubToken})
	git := github.NewClient(oauth2.NewClient(ctx, ts))

	title := body
	if len(title) > 60 {
		title = title[:60]
	}
	state := "open"
	labels := []string{"discord request"}

	issue, _, err := git.Issues.Create(ctx, owner, repo, &github.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &labels,
		State:  &state,
	})
	if err != nil {
		log.Println(i.GuildID, "request: Issues.Create()", err)
		followUp(s, i, "Error "+err.Error())
		return
	}

	followUp(s, i, "📝 Issue #"+strconv.Itoa(issue.GetNumber())+" has been created")
}
