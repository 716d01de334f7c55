package drive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
)

// LoadConfig builds the OAuth client config. GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET take precedence over the credentials file so a leaked
// oauth_credentials.json can be rotated without redeploying files.
func LoadConfig(credentialsPath string) (*oauth2.Config, error) {
	if cfg, ok := configFromEnv(); ok {
		return cfg, nil
	}

	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read credentials %s: %w", credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(b, driveapi.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}
	return cfg, nil
}

func configFromEnv() (*oauth2.Config, bool) {
	id := os.Getenv("GOOGLE_CLIENT_ID")
	secret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if id == "" || secret == "" {
		return nil, false
	}
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{driveapi.DriveScope},
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
	}, true
}

func ReadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	return tok, nil
}

// WriteToken persists the token with a temp-file rename so a crash mid-write
// never corrupts token.json.
func WriteToken(path string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// savingSource wraps a TokenSource and writes refreshed tokens back to disk,
// so restarts keep the latest refresh state.
type savingSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string // last persisted access token
}

func newSavingSource(src oauth2.TokenSource, path string, current *oauth2.Token) *savingSource {
	s := &savingSource{src: src, path: path}
	if current != nil {
		s.last = current.AccessToken
	}
	return s
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := WriteToken(s.path, tok); err != nil {
			// Refresh still worked, keep going with the in-memory token.
			return tok, nil
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
