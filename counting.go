package main

import (
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/celestiguard/celestiguard/pkg/game"
)

// noticeTTL is how long a violation notice stays before the bot deletes it.
const noticeTTL = 6 * time.Second

// channelAPI is the slice of *discordgo.Session the counting listener
// needs, split out so tests can watch what the bot posts and deletes.
type channelAPI interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// onMessage watches the configured counting channel and applies the game
// rules to every human message in it.
func onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	handleCount(s, m.GuildID, m.ChannelID, m.ID, m.Author.ID, m.Content)
}

// handleCount judges one human message against the game state and persists
// the result. The whole load-judge-save span holds the guild lock: the
// gateway dispatches each event on its own goroutine, and two quick
// messages must still be judged one after the other.
func handleCount(api channelAPI, guildID, channelID, messageID, userID, content string) {
	mu := lockGuild(guildID)
	mu.Lock()
	defer mu.Unlock()

	st := getChannelState(guildID)
	if st.ChannelID == "" || st.ChannelID != channelID {
		return
	}

	extreme := getSetting(guildID, "extreme_mode", "false") == "true"
	deleteWrong := getSetting(guildID, "delete_wrong", "true") == "true"

	next, res := game.Process(
		gameState(st),
		game.Submission{UserID: userID, Content: content},
		game.Options{Extreme: extreme},
	)

	switch res.Outcome {
	case game.Ignored:
		// Chatter in the counting channel. State untouched.
		if deleteWrong {
			deleteMessage(api, channelID, messageID)
		}
		return

	case game.WrongNumber, game.DoubleCount:
		if deleteWrong {
			deleteMessage(api, channelID, messageID)
		}
		reason := "Expected **" + strconv.FormatInt(res.Expected, 10) + "**."
		if res.Outcome == game.DoubleCount {
			reason = "You can't count twice in a row."
		}
		notice, err := api.ChannelMessageSend(channelID,
			"❌ Wrong count by <@"+userID+">: "+reason+" Count resets to **0**. Next is **1**.")
		if err != nil {
			log.Println(guildID, "handleCount: ChannelMessageSend()", err)
		} else {
			go func() {
				time.Sleep(noticeTTL)
				deleteMessage(api, notice.ChannelID, notice.ID)
			}()
		}

	case game.Accepted:
		emoji := "✅"
		if res.NewRecord {
			emoji = "🏆"
		}
		if err := api.MessageReactionAdd(channelID, messageID, emoji); err != nil {
			log.Println(guildID, "handleCount: MessageReactionAdd()", err)
		}
		bumpTally(guildID, userID)
	}

	applyGameState(&st, next)
	if err := saveChannelState(&st); err != nil {
		log.Println(guildID, "handleCount: db.Save()", err)
	}
}

func deleteMessage(api channelAPI, channelID, messageID string) {
	if err := api.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Println("deleteMessage: ChannelMessageDelete()", err)
	}
}
