package main

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/asdine/storm"
	"github.com/asdine/storm/q"
	"github.com/bwmarrin/discordgo"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/models"
)

// recordCase appends one action to the guild's moderation log.
func recordCase(guildID, userID, moderatorID, action, reason string, points int) (models.ModCase, error) {
	c := models.ModCase{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Action:      action,
		Reason:      reason,
		Points:      points,
		CreatedAt:   time.Now(),
	}
	err := db.DB.Save(&c)
	return c, err
}

func commandWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	om := optionMap(i)
	target := om["member"].UserValue(s)

	points := 1
	if opt, ok := om["points"]; ok {
		points = int(opt.IntValue())
		if points < 1 {
			points = 1
		}
	}
	reason := ""
	if opt, ok := om["reason"]; ok {
		reason = opt.StringValue()
	}

	if _, err := recordCase(i.GuildID, target.ID, i.Member.User.ID, "warn", reason, points); err != nil {
		log.Println(i.GuildID, "warn: db.Save()", err)
		reply(s, i, "Error "+err.Error())
		return
	}

	msg := "⚠️ Warned " + target.Mention() + " (" + strconv.Itoa(points) + " pt)"
	if reason != "" {
		msg += ": " + reason
	}
	reply(s, i, msg)
	logToChannel(s, i.GuildID, msg+" — by <@"+i.Member.User.ID+">")
}

func commandBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	om := optionMap(i)
	target := om["member"].UserValue(s)
	reason := ""
	if opt, ok := om["reason"]; ok {
		reason = opt.StringValue()
	}
	days := 0
	if opt, ok := om["delete_days"]; ok {
		days = int(opt.IntValue())
		if days < 0 {
			days = 0
		}
	}

	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, days); err != nil {
		log.Println(i.GuildID, "ban: GuildBanCreateWithReason()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if _, err := recordCase(i.GuildID, target.ID, i.Member.User.ID, "ban", reason, 0); err != nil {
		log.Println(i.GuildID, "ban: db.Save()", err)
	}

	msg := "🔨 Banned " + target.Mention()
	if reason != "" {
		msg += ": " + reason
	}
	reply(s, i, msg)
	logToChannel(s, i.GuildID, msg+" — by <@"+i.Member.User.ID+">")
}

func commandUnban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := optionMap(i)["user_id"].StringValue()

	if err := s.GuildBanDelete(i.GuildID, userID); err != nil {
		log.Println(i.GuildID, "unban: GuildBanDelete()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if _, err := recordCase(i.GuildID, userID, i.Member.User.ID, "unban", "", 0); err != nil {
		log.Println(i.GuildID, "unban: db.Save()", err)
	}

	msg := "🕊️ Unbanned <@" + userID + ">"
	reply(s, i, msg)
	logToChannel(s, i.GuildID, msg+" — by <@"+i.Member.User.ID+">")
}

func commandKick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	om := optionMap(i)
	target := om["member"].UserValue(s)
	reason := ""
	if opt, ok := om["reason"]; ok {
		reason = opt.StringValue()
	}

	if err := s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason); err != nil {
		log.Println(i.GuildID, "kick: GuildMemberDeleteWithReason()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if _, err := recordCase(i.GuildID, target.ID, i.Member.User.ID, "kick", reason, 0); err != nil {
		log.Println(i.GuildID, "kick: db.Save()", err)
	}

	msg := "👢 Kicked " + target.Mention()
	if reason != "" {
		msg += ": " + reason
	}
	reply(s, i, msg)
	logToChannel(s, i.GuildID, msg+" — by <@"+i.Member.User.ID+">")
}

func commandTimeout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	om := optionMap(i)
	target := om["member"].UserValue(s)
	minutes := om["minutes"].IntValue()
	if minutes < 1 {
		minutes = 1
	}
	reason := ""
	if opt, ok := om["reason"]; ok {
		reason = opt.StringValue()
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := s.GuildMemberTimeout(i.GuildID, target.ID, &until); err != nil {
		log.Println(i.GuildID, "timeout: GuildMemberTimeout()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if _, err := recordCase(i.GuildID, target.ID, i.Member.User.ID, "timeout",
		strconv.FormatInt(minutes, 10)+"m "+reason, 0); err != nil {
		log.Println(i.GuildID, "timeout: db.Save()", err)
	}

	msg := "⏳ Timed out " + target.Mention() + " for " + strconv.FormatInt(minutes, 10) + "m"
	if reason != "" {
		msg += ": " + reason
	}
	reply(s, i, msg)
	logToChannel(s, i.GuildID, msg+" — by <@"+i.Member.User.ID+">")
}

func commandPurge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	count := int(optionMap(i)["count"].IntValue())
	if count < 1 {
		count = 1
	}
	if count > 100 {
		count = 100
	}
	deferReply(s, i)

	msgs, err := s.ChannelMessages(i.ChannelID, count, "", "", "")
	if err != nil {
		log.Println(i.GuildID, "purge: ChannelMessages()", err)
		followUp(s, i, "Error "+err.Error())
		return
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		log.Println(i.GuildID, "purge: ChannelMessagesBulkDelete()", err)
		followUp(s, i, "Error "+err.Error())
		return
	}
	if _, err := recordCase(i.GuildID, "", i.Member.User.ID, "purge",
		strconv.Itoa(len(ids))+" messages in <#"+i.ChannelID+">", 0); err != nil {
		log.Println(i.GuildID, "purge: db.Save()", err)
	}

	followUp(s, i, "🧹 Deleted "+strconv.Itoa(len(ids))+" message(s)")
	logToChannel(s, i.GuildID, "🧹 Purged "+strconv.Itoa(len(ids))+" message(s) in <#"+i.ChannelID+"> by <@"+i.Member.User.ID+">")
}

func commandWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := optionMap(i)["member"].UserValue(s)

	var cases []models.ModCase
	err := db.DB.Select(q.Eq("GuildID", i.GuildID), q.Eq("UserID", target.ID), q.Eq("Action", "warn")).
		OrderBy("ID").Reverse().Find(&cases)
	if err != nil && err != storm.ErrNotFound {
		log.Println(i.GuildID, "warnings: db.Select()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if len(cases) == 0 {
		reply(s, i, target.Mention()+" has no warnings.")
		return
	}

	total := 0
	var b strings.Builder
	for _, c := range cases {
		total += c.Points
		b.WriteString("• #" + strconv.Itoa(c.ID) + " (" + strconv.Itoa(c.Points) + " pt) " + c.Reason +
			" — " + c.CreatedAt.Format("Jan 2 2006") + "\n")
	}
	reply(s, i, target.Mention()+" has **"+strconv.Itoa(total)+"** warning points:\n"+b.String())
}

func commandClearWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := optionMap(i)["member"].UserValue(s)

	var cases []models.ModCase
	err := db.DB.Select(q.Eq("GuildID", i.GuildID), q.Eq("UserID", target.ID), q.Eq("Action", "warn")).Find(&cases)
	if err != nil && err != storm.ErrNotFound {
		log.Println(i.GuildID, "clearwarnings: db.Select()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	for n := range cases {
		if err := db.DB.DeleteStruct(&cases[n]); err != nil {
			log.Println(i.GuildID, "clearwarnings: db.DeleteStruct()", err)
		}
	}
	reply(s, i, "🧹 Cleared "+strconv.Itoa(len(cases))+" warning(s) for "+target.Mention())
	logToChannel(s, i.GuildID, "Warnings cleared for "+target.Mention()+" by <@"+i.Member.User.ID+">")
}

func commandCases(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var cases []models.ModCase
	err := db.DB.Select(q.Eq("GuildID", i.GuildID)).OrderBy("ID").Reverse().Limit(25).Find(&cases)
	if err != nil && err != storm.ErrNotFound {
		log.Println(i.GuildID, "cases: db.Select()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if len(cases) == 0 {
		reply(s, i, "No moderation cases yet.")
		return
	}

	var b strings.Builder
	for _, c := range cases {
		b.WriteString("#" + strconv.Itoa(c.ID) + " " + c.Action + " <@" + c.UserID + "> by <@" + c.ModeratorID + ">")
		if c.Reason != "" {
			b.WriteString(" — " + c.Reason)
		}
		b.WriteString("\n")
	}
	reply(s, i, b.String())
}

func commandSetLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channel := optionMap(i)["channel"].ChannelValue(s)
	if err := setSetting(i.GuildID, "log_channel", channel.ID); err != nil {
		log.Println(i.GuildID, "setlogchannel: setSetting()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	reply(s, i, "📋 Log channel set to <#"+channel.ID+">")
}

// logToChannel posts to the guild's configured log channel, if any.
func logToChannel(s *discordgo.Session, guildID, msg string) {
	channelID := getSetting(guildID, "log_channel", "")
	if channelID == "" {
		return
	}
	if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
		log.Println(guildID, "logToChannel: ChannelMessageSend()", err)
	}
}

// onMessageDelete mirrors deletions to the log channel. The counting
// channel is skipped so the bot's own wrong-count cleanup doesn't echo.
// Content is only known while the gateway cache still holds the message.
func onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" {
		return
	}
	if st := getChannelState(m.GuildID); st.ChannelID == m.ChannelID {
		return
	}
	msg := "🗑️ Message deleted in <#" + m.ChannelID + ">"
	if m.BeforeDelete != nil && m.BeforeDelete.Content != "" {
		msg += ": " + m.BeforeDelete.Content
	}
	logToChannel(s, m.GuildID, msg)
}

// onMessageUpdate mirrors human edits to the log channel.
func onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	msg := "✏️ Message edited by " + m.Author.Mention() + " in <#" + m.ChannelID + ">"
	if m.BeforeUpdate != nil && m.BeforeUpdate.Content != "" && m.BeforeUpdate.Content != m.Content {
		msg += "\nBefore: " + m.BeforeUpdate.Content + "\nAfter: " + m.Content
	}
	logToChannel(s, m.GuildID, msg)
}
