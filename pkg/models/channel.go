package models

// Channel is the per-guild counting state. ChannelID is empty until an
// admin runs /setcountingchannel.
type Channel struct {
	GuildID      string `storm:"id"`
	ChannelID    string
	Count        int64
	LastUserID   string
	HighScore    int64
	HighScorerID string
}
