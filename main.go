package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/asdine/storm"
	"github.com/bwmarrin/discordgo"

	_ "github.com/joho/godotenv/autoload"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/models"
)

var cfg *Config

func main() {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatalln("loadConfig():", err)
	}

	// Open DB.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalln("os.MkdirAll():", err)
		}
	}
	db.DB, err = storm.Open(cfg.DBPath)
	if err != nil {
		log.Fatalln("storm.Open():", err)
	}
	for _, m := range []any{
		&models.Channel{},
		&models.Tally{},
		&models.Setting{},
		&models.ShareToken{},
		&models.ModCase{},
	} {
		if err := db.DB.Init(m); err != nil {
			log.Fatalln("db.DB.Init():", err)
		}
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalln("discordgo.New():", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(onMessage)
	session.AddHandler(onMessageDelete)
	session.AddHandler(onMessageUpdate)
	session.AddHandler(onInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		registerCommands(s)
		if err := s.UpdateGameStatus(0, "counting | /setcountingchannel"); err != nil {
			log.Println("UpdateGameStatus():", err)
		}
		log.Println("✅ CelestiGuard online as", r.User.Username, "| v"+cfg.Version)
	})

	if err := session.Open(); err != nil {
		log.Fatalln("session.Open():", err)
	}

	// Dashboard runs in-process; nginx or similar proxies to it.
	dash := &Dashboard{Session: session, Token: cfg.DashboardToken, Version: cfg.Version}
	srv := &http.Server{
		Addr:              cfg.DashboardAddr,
		Handler:           dash.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Println("Dashboard listening on", cfg.DashboardAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln("dashboard:", err)
		}
	}()

	// Shutdown logic --------------------------------------------------------
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	<-gracefulStop
	log.Println("Preparing to shut down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("srv.Shutdown():", err)
	}
	if err := session.Close(); err != nil {
		log.Println("session.Close():", err)
	}
	if err := db.DB.Close(); err != nil {
		log.Println("db.DB.Close():", err)
	}
	log.Println("Exiting")
}
