package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/eliseohh/drivedrop/internal/bot"
	"github.com/eliseohh/drivedrop/internal/drive"
	"github.com/eliseohh/drivedrop/internal/journal"
	"github.com/eliseohh/drivedrop/internal/transfer"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("DriveDrop: Telegram to Google Drive Bot")

	// Local development reads .env; hosted deployments set real env vars.
	godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("❌ BOT_TOKEN environment variable not set")
	}

	credsPath := envOr("CREDENTIALS_PATH", "./oauth_credentials.json")
	tokenPath := envOr("TOKEN_PATH", "./token.json")
	dbPath := envOr("JOURNAL_PATH", "./transfers.db")
	spoolDir := envOr("SPOOL_DIR", "./spool")

	// 1. Journal DB
	db, err := journal.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Schema init failed: %v", err)
	}

	// 2. Google Drive
	ctx := context.Background()

	cfg, err := drive.LoadConfig(credsPath)
	if err != nil {
		log.Fatalf("❌ OAuth credentials not available: %v\n📋 Upload oauth_credentials.json or set GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET", err)
	}

	tok, err := drive.ReadToken(tokenPath)
	if err != nil {
		log.Fatalf("❌ OAuth token not available: %v\n📋 Generate token.json with: go run ./cmd/token", err)
	}

	up, err := drive.New(ctx, cfg, tok, tokenPath)
	if err != nil {
		log.Fatalf("Drive init failed: %v", err)
	}

	if quota, err := up.About(ctx); err != nil {
		log.Fatalf("❌ Google Drive service not ready: %v", err)
	} else {
		fmt.Printf("✅ Google Drive connected: %s\n", quota.User)
	}

	// 3. Transfer queue
	queue, err := transfer.NewQueue(up, db, spoolDir, 2, 32)
	if err != nil {
		log.Fatalf("Queue init failed: %v", err)
	}
	defer queue.Close()

	// 4. Spool sweeper (stray temp files from crashed transfers)
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if n, err := transfer.SweepSpool(spoolDir, time.Hour); err != nil {
				log.Printf("Sweep error: %v", err)
			} else if n > 0 {
				log.Printf("Swept %d stale spool files", n)
			}
		}
	}()

	// 5. Start bot
	b, err := bot.New(bot.Config{Token: token}, db, up, queue)
	if err != nil {
		log.Fatalf("Bot init failed: %v", err)
	}

	fmt.Println("🤖 Bot Online. Listening...")
	b.Start()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
