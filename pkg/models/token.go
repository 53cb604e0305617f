package models

import "time"

// ShareToken is a one-time dashboard token. A token with a GuildID only
// opens that guild's view; an empty GuildID opens everything once.
type ShareToken struct {
	Token     string `storm:"id"`
	GuildID   string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
