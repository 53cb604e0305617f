package models

type Tally struct {
	ID      int    `storm:"id,increment"`
	GuildID string `storm:"index"`
	UserID  string `storm:"index"`
	Count   int64
}
