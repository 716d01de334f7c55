package drive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRoundTrip(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "token_test")
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	if err := WriteToken(path, tok); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 0600", perm)
	}

	got, err := ReadToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != tok.AccessToken || got.RefreshToken != tok.RefreshToken {
		t.Errorf("token mismatch: %+v", got)
	}
}

func TestReadTokenMissing(t *testing.T) {
	if _, err := ReadToken("/nonexistent/token.json"); err == nil {
		t.Error("expected error for missing token file")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "id-123")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret-456")

	cfg, ok := configFromEnv()
	if !ok {
		t.Fatal("env config not detected")
	}
	if cfg.ClientID != "id-123" || cfg.ClientSecret != "secret-456" {
		t.Errorf("config = %+v", cfg)
	}
	if len(cfg.Scopes) == 0 {
		t.Error("no scopes set")
	}
}

func TestConfigFromEnvIncomplete(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "id-123")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	if _, ok := configFromEnv(); ok {
		t.Error("partial env credentials accepted")
	}
}

type staticSource struct {
	tok *oauth2.Token
}

func (s *staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingSourcePersistsRefresh(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "saving_test")
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, "token.json")

	old := &oauth2.Token{AccessToken: "old", RefreshToken: "r"}
	fresh := &oauth2.Token{AccessToken: "fresh", RefreshToken: "r"}

	src := newSavingSource(&staticSource{tok: fresh}, path, old)
	got, err := src.Token()
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q", got.AccessToken)
	}

	saved, err := ReadToken(path)
	if err != nil {
		t.Fatalf("refreshed token not persisted: %v", err)
	}
	if saved.AccessToken != "fresh" {
		t.Errorf("persisted token = %+v", saved)
	}
}

func TestSavingSourceSkipsUnchanged(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "saving_test")
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, "token.json")

	same := &oauth2.Token{AccessToken: "same", RefreshToken: "r"}
	src := newSavingSource(&staticSource{tok: same}, path, same)
	if _, err := src.Token(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file written although access token unchanged")
	}
}
