// Command token generates or verifies the Google Drive OAuth token file.
//
// Generate a new token.json (prints the consent URL, reads the code from stdin):
//
//	go run ./cmd/token
//
// Verify an existing token against the Drive API:
//
//	go run ./cmd/token -verify
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eliseohh/drivedrop/internal/drive"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

func main() {
	credsPath := flag.String("credentials", "", "path to oauth_credentials.json (default $CREDENTIALS_PATH or ./oauth_credentials.json)")
	tokenPath := flag.String("token", "", "path to token.json (default $TOKEN_PATH or ./token.json)")
	verify := flag.Bool("verify", false, "verify the existing token against the Drive API instead of generating one")
	flag.Parse()

	godotenv.Load()

	if *credsPath == "" {
		*credsPath = envOr("CREDENTIALS_PATH", "./oauth_credentials.json")
	}
	if *tokenPath == "" {
		*tokenPath = envOr("TOKEN_PATH", "./token.json")
	}

	cfg, err := drive.LoadConfig(*credsPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	if *verify {
		tok, err := drive.ReadToken(*tokenPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		up, err := drive.New(ctx, cfg, tok, *tokenPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		quota, err := up.About(ctx)
		if err != nil {
			log.Fatalf("❌ Drive API rejected the token: %v", err)
		}
		fmt.Printf("✅ Token valid for %s\n", quota.User)
		if quota.Limit > 0 {
			fmt.Printf("📦 Quota: %d / %d bytes used\n", quota.Usage, quota.Limit)
		}
		return
	}

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this link to authorize the bot:\n%v\n\n", authURL)
	fmt.Print("Paste the authorization code here and press Enter: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		log.Fatalf("❌ cannot read authorization code: %v", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Fatalf("❌ code exchange failed: %v", err)
	}
	if tok.RefreshToken == "" {
		log.Println("⚠️ No refresh token returned; revoke the app's access and retry to force one.")
	}

	if err := drive.WriteToken(*tokenPath, tok); err != nil {
		log.Fatalf("❌ cannot save token: %v", err)
	}
	fmt.Printf("✅ Saved %s\n", *tokenPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
