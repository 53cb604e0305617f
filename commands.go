package main

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/models"
)

var adminPerm int64 = discordgo.PermissionManageServer

var commandDefs = []*discordgo.ApplicationCommand{
	{
		Name:                     "setcountingchannel",
		Description:              "Set the counting channel (auto backfill)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Channel where counting happens",
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}},
	},
	{
		Name:        "stats",
		Description: "Show counting stats",
	},
	{
		Name:                     "setcount",
		Description:              "Set current count (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "value",
			Description: "New count",
			Required:    true,
		}},
	},
	{
		Name:                     "resetcount",
		Description:              "Reset count to 0 (admin)",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "extrememode",
		Description:              "Toggle Extreme Mode",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "value",
			Description: "Enable or disable",
			Required:    true,
		}},
	},
	{
		Name:                     "countconfig",
		Description:              "Toggle deletion of wrong messages in counting channel",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "delete_wrong",
			Description: "Delete wrong or off-topic messages",
			Required:    true,
		}},
	},
	{
		Name:                     "synccount",
		Description:              "Rescan history and sync current count (admin)",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "sharelink",
		Description:              "Create a one-time dashboard link for this server",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutes",
			Description: "How long the link stays valid (default 15)",
		}},
	},
	{
		Name:        "request",
		Description: "File a feature request or bug report",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "Your request",
			Required:    true,
		}},
	},
	{
		Name:                     "warn",
		Description:              "Warn a member (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to warn",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "points",
				Description: "Warning points (default 1)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason",
			},
		},
	},
	{
		Name:                     "warnings",
		Description:              "List a member's warnings (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to look up",
			Required:    true,
		}},
	},
	{
		Name:                     "clearwarnings",
		Description:              "Clear a member's warnings (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Member to clear",
			Required:    true,
		}},
	},
	{
		Name:                     "cases",
		Description:              "List recent moderation cases (admin)",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "ban",
		Description:              "Ban a member (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to ban",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "delete_days",
				Description: "Days of their messages to delete (default 0)",
			},
		},
	},
	{
		Name:                     "unban",
		Description:              "Lift a ban by user ID (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "ID of the banned user",
			Required:    true,
		}},
	},
	{
		Name:                     "kick",
		Description:              "Kick a member (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to kick",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason",
			},
		},
	},
	{
		Name:                     "timeout",
		Description:              "Time a member out (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to time out",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "minutes",
				Description: "Timeout length in minutes",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason",
			},
		},
	},
	{
		Name:                     "purge",
		Description:              "Bulk-delete recent messages in this channel (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "count",
			Description: "How many messages (max 100)",
			Required:    true,
		}},
	},
	{
		Name:                     "setlogchannel",
		Description:              "Set the channel for moderation log messages (admin)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Text channel for logs",
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}},
	},
}

// commandHandlers maps command name to handler; onInteraction is the only
// place that consults it.
var commandHandlers = map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
	"setcountingchannel": commandSetCountingChannel,
	"stats":              commandStats,
	"setcount":           commandSetCount,
	"resetcount":         commandResetCount,
	"extrememode":        commandExtremeMode,
	"countconfig":        commandCountConfig,
	"synccount":          commandSyncCount,
	"sharelink":          commandShareLink,
	"request":            commandRequest,
	"warn":               commandWarn,
	"warnings":           commandWarnings,
	"clearwarnings":      commandClearWarnings,
	"cases":              commandCases,
	"ban":                commandBan,
	"unban":              commandUnban,
	"kick":               commandKick,
	"timeout":            commandTimeout,
	"purge":              commandPurge,
	"setlogchannel":      commandSetLogChannel,
}

func onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	handler, ok := commandHandlers[name]
	if !ok {
		log.Println("onInteraction: no handler for", name)
		return
	}
	if i.GuildID == "" {
		reply(s, i, "This command must be used in a server.")
		return
	}
	handler(s, i)
}

func registerCommands(s *discordgo.Session) {
	for _, def := range commandDefs {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", def); err != nil {
			log.Println("registerCommands:", def.Name, err)
		}
	}
}

func commandSetCountingChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channel := optionMap(i)["channel"].ChannelValue(s)
	deferReply(s, i)

	extreme := getSetting(i.GuildID, "extreme_mode", "false") == "true"
	lastNum, lastUser, err := backfill(s, channel.ID, extreme, cfg.BackfillLimit)
	if err != nil {
		log.Println(i.GuildID, "setcountingchannel: backfill()", err)
		followUp(s, i, "Could not read that channel's history: "+err.Error())
		return
	}

	mu := lockGuild(i.GuildID)
	mu.Lock()
	defer mu.Unlock()

	st := getChannelState(i.GuildID)
	st.ChannelID = channel.ID
	st.Count = lastNum
	st.LastUserID = lastUser
	if err := saveChannelState(&st); err != nil {
		log.Println(i.GuildID, "setcountingchannel: db.Save()", err)
		followUp(s, i, "Error "+err.Error())
		return
	}

	followUp(s, i, "✅ Counting channel set to <#"+channel.ID+">. Detected last **"+
		strconv.FormatInt(lastNum, 10)+"** → next **"+strconv.FormatInt(lastNum+1, 10)+"**.")
}

func commandStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st := getChannelState(i.GuildID)

	channelField := "*not set*"
	if st.ChannelID != "" {
		channelField = "<#" + st.ChannelID + ">"
	}
	recordHolder := "—"
	if st.HighScorerID != "" {
		recordHolder = "<@" + st.HighScorerID + ">"
	}

	var lb strings.Builder
	for n, t := range topTallies(i.GuildID, 10) {
		lb.WriteString(strconv.Itoa(n+1) + ". <@" + t.UserID + "> — " + strconv.FormatInt(t.Count, 10) + "\n")
	}
	if lb.Len() == 0 {
		lb.WriteString("(no data yet)")
	}

	embed := &discordgo.MessageEmbed{
		Title: "CelestiGuard Stats",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Counting Channel", Value: channelField, Inline: true},
			{Name: "Current Count", Value: strconv.FormatInt(st.Count, 10), Inline: true},
			{Name: "Next Number", Value: strconv.FormatInt(st.Count+1, 10), Inline: true},
			{Name: "High Score", Value: strconv.FormatInt(st.HighScore, 10), Inline: true},
			{Name: "Record Holder", Value: recordHolder, Inline: true},
			{Name: "Top Counters", Value: lb.String(), Inline: false},
		},
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Println(i.GuildID, "stats: InteractionRespond()", err)
	}
}

func commandSetCount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	value := optionMap(i)["value"].IntValue()
	if value < 0 {
		value = 0
	}

	mu := lockGuild(i.GuildID)
	mu.Lock()
	defer mu.Unlock()

	st := getChannelState(i.GuildID)
	st.Count = value
	st.LastUserID = ""
	if err := saveChannelState(&st); err != nil {
		log.Println(i.GuildID, "setcount: db.Save()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	reply(s, i, "🔧 Count set to **"+strconv.FormatInt(value, 10)+"**. Next **"+strconv.FormatInt(value+1, 10)+"**.")
}

func commandResetCount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	mu := lockGuild(i.GuildID)
	mu.Lock()
	defer mu.Unlock()

	st := getChannelState(i.GuildID)
	st.Count = 0
	st.LastUserID = ""
	if err := saveChannelState(&st); err != nil {
		log.Println(i.GuildID, "resetcount: db.Save()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	reply(s, i, "🧹 Count reset to **0**. Next **1**.")
}

func commandExtremeMode(s *discordgo.Session, i *discordgo.InteractionCreate) {
	value := optionMap(i)["value"].BoolValue()
	if err := setSetting(i.GuildID, "extreme_mode", strconv.FormatBool(value)); err != nil {
		log.Println(i.GuildID, "extrememode: setSetting()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	if value {
		reply(s, i, "🧨 Extreme Mode ENABLED")
	} else {
		reply(s, i, "⛔ Extreme Mode DISABLED")
	}
}

func commandCountConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	value := optionMap(i)["delete_wrong"].BoolValue()
	if err := setSetting(i.GuildID, "delete_wrong", strconv.FormatBool(value)); err != nil {
		log.Println(i.GuildID, "countconfig: setSetting()", err)
		reply(s, i, "Error "+err.Error())
		return
	}
	reply(s, i, "🧰 delete_wrong set to "+strconv.FormatBool(value))
}

func commandSyncCount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st := getChannelState(i.GuildID)
	if st.ChannelID == "" {
		reply(s, i, "Counting channel not set.")
		return
	}
	deferReply(s, i)

	extreme := getSetting(i.GuildID, "extreme_mode", "false") == "true"
	lastNum, lastUser, err := backfill(s, st.ChannelID, extreme, cfg.BackfillLimit)
	if err != nil {
		log.Println(i.GuildID, "synccount: backfill()", err)
		followUp(s, i, "Could not read the counting channel's history: "+err.Error())
		return
	}

	mu := lockGuild(i.GuildID)
	mu.Lock()
	st = getChannelState(i.GuildID)
	st.Count = lastNum
	st.LastUserID = lastUser
	err = saveChannelState(&st)
	mu.Unlock()
	if err != nil {
		log.Println(i.GuildID, "synccount: db.Save()", err)
		followUp(s, i, "Error "+err.Error())
		return
	}
	followUp(s, i, "🔄 Synced. Last **"+strconv.FormatInt(lastNum, 10)+"** → next **"+strconv.FormatInt(lastNum+1, 10)+"**.")
}

func commandShareLink(s *discordgo.Session, i *discordgo.InteractionCreate) {
	minutes := int64(15)
	if opt, ok := optionMap(i)["minutes"]; ok {
		minutes = opt.IntValue()
		if minutes < 1 {
			minutes = 1
		}
	}

	token := models.ShareToken{
		Token:     uuid.NewString(),
		GuildID:   i.GuildID,
		ExpiresAt: time.Now().Add(time.Duration(minutes) * time.Minute),
		CreatedAt: time.Now(),
	}
	if err := db.DB.Save(&token); err != nil {
		log.Println(i.GuildID, "sharelink: db.Save()", err)
		reply(s, i, "Error "+err.Error())
		return
	}

	url := cfg.DashboardPublicURL + "/guild/" + i.GuildID + "?ot=" + token.Token
	reply(s, i, "🔗 One-time dashboard link (valid "+strconv.FormatInt(minutes, 10)+"m, single use):\n"+url)
}

// ---- interaction plumbing ----

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func reply(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Println(i.GuildID, "reply: InteractionRespond()", err)
	}
}

// deferReply buys time for handlers that do network or history work;
// pair it with followUp.
func deferReply(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Println(i.GuildID, "deferReply: InteractionRespond()", err)
	}
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: msg,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Println(i.GuildID, "followUp: FollowupMessageCreate()", err)
	}
}
