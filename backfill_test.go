package main

import (
	"errors"
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// fakeHistory serves canned messages, newest first, with before-ID paging
// like the real endpoint.
type fakeHistory struct {
	msgs []*discordgo.Message
	err  error
}

func (f *fakeHistory) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if beforeID != "" {
		for n, m := range f.msgs {
			if m.ID == beforeID {
				start = n + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.msgs) {
		end = len(f.msgs)
	}
	return f.msgs[start:end], nil
}

func msg(id, author, content string) *discordgo.Message {
	return &discordgo.Message{ID: id, Content: content, Author: &discordgo.User{ID: author}}
}

func botMsg(id, content string) *discordgo.Message {
	return &discordgo.Message{ID: id, Content: content, Author: &discordgo.User{ID: "bot", Bot: true}}
}

func TestBackfill(t *testing.T) {
	tests := []struct {
		name     string
		msgs     []*discordgo.Message
		wantNum  int64
		wantUser string
	}{
		{
			name:     "empty channel",
			msgs:     nil,
			wantNum:  0,
			wantUser: "",
		},
		{
			name: "clean run",
			msgs: []*discordgo.Message{
				msg("3", "A", "6"),
				msg("2", "B", "5"),
				msg("1", "A", "4"),
			},
			wantNum:  6,
			wantUser: "A",
		},
		{
			name: "noise and bot messages are skipped",
			msgs: []*discordgo.Message{
				botMsg("5", "❌ Wrong count"),
				msg("4", "A", "3"),
				msg("3", "B", "nice one"),
				msg("2", "B", "2"),
				msg("1", "A", "1"),
			},
			wantNum:  3,
			wantUser: "A",
		},
		{
			name: "newest number wins when the older run is broken",
			msgs: []*discordgo.Message{
				msg("4", "A", "7"),
				msg("3", "B", "3"),
				msg("2", "A", "2"),
				msg("1", "B", "1"),
			},
			wantNum:  7,
			wantUser: "A",
		},
		{
			name: "all chatter",
			msgs: []*discordgo.Message{
				msg("2", "A", "hello"),
				msg("1", "B", "world"),
			},
			wantNum:  0,
			wantUser: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, user, err := backfill(&fakeHistory{msgs: tt.msgs}, "c1", false, 5000)
			if err != nil {
				t.Fatal("backfill():", err)
			}
			if num != tt.wantNum || user != tt.wantUser {
				t.Errorf("backfill() = %d, %q; want %d, %q", num, user, tt.wantNum, tt.wantUser)
			}
		})
	}
}

func TestBackfillPaging(t *testing.T) {
	// 150 consecutive counts forces a second page.
	var msgs []*discordgo.Message
	for n := 150; n >= 1; n-- {
		author := "A"
		if n%2 == 0 {
			author = "B"
		}
		msgs = append(msgs, msg("id"+strconv.Itoa(n), author, strconv.Itoa(n)))
	}

	num, user, err := backfill(&fakeHistory{msgs: msgs}, "c1", false, 5000)
	if err != nil {
		t.Fatal("backfill():", err)
	}
	if num != 150 || user != "B" {
		t.Errorf("backfill() = %d, %q; want 150, B", num, user)
	}
}

func TestBackfillRespectsLimit(t *testing.T) {
	msgs := []*discordgo.Message{
		msg("3", "A", "3"),
		msg("2", "B", "2"),
		msg("1", "A", "1"),
	}
	num, user, err := backfill(&fakeHistory{msgs: msgs}, "c1", false, 1)
	if err != nil {
		t.Fatal("backfill():", err)
	}
	if num != 3 || user != "A" {
		t.Errorf("backfill() = %d, %q; want 3, A", num, user)
	}
}

func TestBackfillError(t *testing.T) {
	wantErr := errors.New("boom")
	if _, _, err := backfill(&fakeHistory{err: wantErr}, "c1", false, 5000); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
