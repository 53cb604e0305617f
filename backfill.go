package main

import (
	"github.com/bwmarrin/discordgo"

	"github.com/celestiguard/celestiguard/pkg/game"
)

// messageHistory is the slice of *discordgo.Session that backfill needs,
// split out so tests can replay a canned channel.
type messageHistory interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// backfill walks a channel newest-first and reconstructs the trailing run
// of consecutive counts, so /setcountingchannel can pick up a game that was
// already underway. It returns the last counted number and who posted it.
func backfill(h messageHistory, channelID string, extreme bool, maxMessages int) (int64, string, error) {
	var (
		lastNumber int64
		lastUser   string
		expected   int64
		seeded     bool
		before     string
	)

scan:
	for scanned := 0; scanned < maxMessages; {
		limit := min(100, maxMessages-scanned)
		msgs, err := h.ChannelMessages(channelID, limit, before, "", "")
		if err != nil {
			return 0, "", err
		}
		if len(msgs) == 0 {
			break
		}

		for _, msg := range msgs {
			scanned++
			before = msg.ID
			if msg.Author == nil || msg.Author.Bot {
				continue
			}
			val, ok := game.ParseCount(msg.Content, extreme)
			if !ok {
				continue
			}
			switch {
			case !seeded:
				// Newest number seen is the live count; everything older
				// must form a descending run for it to be trusted.
				lastNumber, lastUser = val, msg.Author.ID
				expected = val - 1
				seeded = true
			case val == expected:
				expected--
			default:
				break scan
			}
		}
	}

	if lastNumber < 0 {
		lastNumber = 0
	}
	return lastNumber, lastUser, nil
}
