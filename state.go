package main

import (
	"log"
	"sync"

	"github.com/asdine/storm"
	"github.com/asdine/storm/q"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/game"
	"github.com/celestiguard/celestiguard/pkg/models"
)

var (
	guildLocksMu sync.Mutex
	guildLocks   = map[string]*sync.Mutex{}
)

// lockGuild returns the mutex serializing counting-state changes for one
// guild. Gateway events arrive on separate goroutines, so every
// load-judge-save span must run under it.
func lockGuild(guildID string) *sync.Mutex {
	guildLocksMu.Lock()
	defer guildLocksMu.Unlock()
	mu, ok := guildLocks[guildID]
	if !ok {
		mu = &sync.Mutex{}
		guildLocks[guildID] = mu
	}
	return mu
}

// getChannelState loads a guild's counting state, or a fresh one if the
// guild has never been seen.
func getChannelState(guildID string) models.Channel {
	var ch models.Channel
	if err := db.DB.One("GuildID", guildID, &ch); err != nil {
		return models.Channel{GuildID: guildID}
	}
	return ch
}

func saveChannelState(ch *models.Channel) error {
	return db.DB.Save(ch)
}

func gameState(ch models.Channel) game.State {
	return game.State{
		Count:        ch.Count,
		LastUserID:   ch.LastUserID,
		HighScore:    ch.HighScore,
		HighScorerID: ch.HighScorerID,
	}
}

func applyGameState(ch *models.Channel, s game.State) {
	ch.Count = s.Count
	ch.LastUserID = s.LastUserID
	ch.HighScore = s.HighScore
	ch.HighScorerID = s.HighScorerID
}

// bumpTally credits one accepted count to a user.
func bumpTally(guildID, userID string) {
	var t models.Tally
	err := db.DB.Select(q.Eq("GuildID", guildID), q.Eq("UserID", userID)).First(&t)
	if err == storm.ErrNotFound {
		if err := db.DB.Save(&models.Tally{GuildID: guildID, UserID: userID, Count: 1}); err != nil {
			log.Println(guildID, "bumpTally: db.Save()", err)
		}
		return
	}
	if err != nil {
		log.Println(guildID, "bumpTally: db.Select()", err)
		return
	}
	if err := db.DB.UpdateField(&models.Tally{ID: t.ID}, "Count", t.Count+1); err != nil {
		log.Println(guildID, "bumpTally: db.UpdateField()", err)
	}
}

func topTallies(guildID string, limit int) []models.Tally {
	var ts []models.Tally
	err := db.DB.Select(q.Eq("GuildID", guildID)).OrderBy("Count").Reverse().Limit(limit).Find(&ts)
	if err != nil && err != storm.ErrNotFound {
		log.Println(guildID, "topTallies: db.Select()", err)
	}
	return ts
}

func getSetting(guildID, key, fallback string) string {
	var s models.Setting
	if err := db.DB.Select(q.Eq("GuildID", guildID), q.Eq("Key", key)).First(&s); err != nil {
		return fallback
	}
	return s.Value
}

func setSetting(guildID, key, value string) error {
	var s models.Setting
	err := db.DB.Select(q.Eq("GuildID", guildID), q.Eq("Key", key)).First(&s)
	if err == storm.ErrNotFound {
		return db.DB.Save(&models.Setting{GuildID: guildID, Key: key, Value: value})
	}
	if err != nil {
		return err
	}
	return db.DB.UpdateField(&models.Setting{ID: s.ID}, "Value", value)
}
