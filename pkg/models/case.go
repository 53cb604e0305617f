package models

import "time"

// ModCase is one entry in a guild's moderation log.
type ModCase struct {
	ID          int    `storm:"id,increment"`
	GuildID     string `storm:"index"`
	UserID      string `storm:"index"`
	ModeratorID string
	Action      string
	Reason      string
	Points      int
	CreatedAt   time.Time
}
