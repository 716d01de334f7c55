// Command preflight checks a deployment before the bot starts: required
// environment variables, credential files, and that no secret file is about
// to be committed.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliseohh/drivedrop/internal/drive"
	"github.com/joho/godotenv"
)

func main() {
	errors := 0
	fmt.Println("🛡️  Running deployment preflight checks...")

	godotenv.Load()

	// 1. Required environment
	if os.Getenv("BOT_TOKEN") == "" {
		fmt.Println("❌ [Env] BOT_TOKEN is not set")
		errors++
	} else {
		fmt.Println("✅ [Env] BOT_TOKEN present")
	}

	credsPath := envOr("CREDENTIALS_PATH", "./oauth_credentials.json")
	tokenPath := envOr("TOKEN_PATH", "./token.json")

	// 2. OAuth client config must parse (file or env override).
	if _, err := drive.LoadConfig(credsPath); err != nil {
		fmt.Printf("❌ [OAuth] %v\n", err)
		errors++
	} else {
		fmt.Println("✅ [OAuth] client credentials usable")
	}

	// 3. Token file must exist and carry a refresh token, otherwise the bot
	// dies on the first expiry.
	if tok, err := drive.ReadToken(tokenPath); err != nil {
		fmt.Printf("❌ [OAuth] %v\n", err)
		errors++
	} else if tok.RefreshToken == "" {
		fmt.Println("❌ [OAuth] token.json has no refresh token, regenerate with cmd/token")
		errors++
	} else {
		fmt.Println("✅ [OAuth] token.json present with refresh token")
	}

	// 4. Secret files must be gitignored so a push can't leak them.
	for _, secret := range []string{filepath.Base(credsPath), filepath.Base(tokenPath), ".env"} {
		if !gitignored(secret) {
			fmt.Printf("❌ [Leak] %s is not listed in .gitignore\n", secret)
			errors++
		}
	}

	// 5. Nothing that looks like an OAuth client secret in tracked-looking
	// source files.
	filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") || info.Name() == "vendor" || info.Name() == "spool" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, ".md") && !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if strings.Contains(string(content), "GOCSPX-") {
			fmt.Printf("❌ [Leak] possible client secret committed in %s\n", path)
			errors++
		}
		return nil
	})

	if errors > 0 {
		fmt.Printf("\n🚫 %d PREFLIGHT CHECKS FAILED.\n", errors)
		os.Exit(1)
	}
	fmt.Println("\n✅ PREFLIGHT PASSED")
}

func gitignored(name string) bool {
	content, err := os.ReadFile(".gitignore")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == name {
			return true
		}
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
