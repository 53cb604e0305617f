package main

import (
	"testing"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/models"
)

func TestRecordCase(t *testing.T) {
	setupTestDB(t)

	c, err := recordCase("g1", "u1", "mod1", "ban", "spam", 0)
	if err != nil {
		t.Fatal("recordCase():", err)
	}
	if c.ID == 0 {
		t.Error("case got no ID")
	}

	var got models.ModCase
	if err := db.DB.One("ID", c.ID, &got); err != nil {
		t.Fatal("db.One():", err)
	}
	if got.GuildID != "g1" || got.UserID != "u1" || got.ModeratorID != "mod1" ||
		got.Action != "ban" || got.Reason != "spam" {
		t.Errorf("stored case = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("stored case has zero CreatedAt")
	}

	// Cases accumulate per guild.
	if _, err := recordCase("g1", "u2", "mod1", "kick", "", 0); err != nil {
		t.Fatal("recordCase():", err)
	}
	var cases []models.ModCase
	if err := db.DB.Find("GuildID", "g1", &cases); err != nil {
		t.Fatal("db.Find():", err)
	}
	if len(cases) != 2 {
		t.Errorf("len(cases) = %d, want 2", len(cases))
	}
}

// Every registered command has a handler and every handler is registered.
func TestCommandWiring(t *testing.T) {
	if len(commandDefs) != len(commandHandlers) {
		t.Errorf("len(commandDefs) = %d, len(commandHandlers) = %d", len(commandDefs), len(commandHandlers))
	}
	seen := map[string]bool{}
	for _, def := range commandDefs {
		if seen[def.Name] {
			t.Errorf("duplicate command definition %q", def.Name)
		}
		seen[def.Name] = true
		if _, ok := commandHandlers[def.Name]; !ok {
			t.Errorf("no handler for /%s", def.Name)
		}
	}
	for name := range commandHandlers {
		if !seen[name] {
			t.Errorf("handler %q has no command definition", name)
		}
	}
}
