package models

// Setting is one per-guild key/value pair (extreme_mode, delete_wrong,
// log_channel).
type Setting struct {
	ID      int    `storm:"id,increment"`
	GuildID string `storm:"index"`
	Key     string `storm:"index"`
	Value   string
}
