package drive

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMIME = "application/vnd.google-apps.folder"

// 8MB chunks keep memory flat on small instances while still making
// progress on 2GB videos.
const uploadChunkSize = 8 * 1024 * 1024

// Uploader wraps the Drive v3 service with folder caching and token
// persistence.
type Uploader struct {
	svc *driveapi.Service

	mu      sync.Mutex
	folders map[string]string // name -> folder ID
}

// New builds the Drive service. When tokenPath is non-empty, refreshed
// tokens are written back there.
func New(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, tokenPath string) (*Uploader, error) {
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("token is expired and has no refresh token, regenerate it with cmd/token")
	}

	var src oauth2.TokenSource = cfg.TokenSource(ctx, tok)
	if tokenPath != "" {
		src = newSavingSource(oauth2.ReuseTokenSource(nil, src), tokenPath, tok)
	}

	svc, err := driveapi.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, src)))
	if err != nil {
		return nil, fmt.Errorf("failed to init drive service: %w", err)
	}

	return &Uploader{svc: svc, folders: make(map[string]string)}, nil
}

// EnsureFolder finds a folder by name or creates it, returning its ID.
func (u *Uploader) EnsureFolder(ctx context.Context, name string) (string, error) {
	u.mu.Lock()
	if id, ok := u.folders[name]; ok {
		u.mu.Unlock()
		return id, nil
	}
	u.mu.Unlock()

	list, err := u.svc.Files.List().
		Q(folderQuery(name)).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("folder lookup failed: %w", err)
	}

	var id string
	if len(list.Files) > 0 {
		id = list.Files[0].Id
	} else {
		folder, err := u.svc.Files.Create(&driveapi.File{
			Name:     name,
			MimeType: folderMIME,
		}).Fields("id").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("folder create failed: %w", err)
		}
		id = folder.Id
	}

	u.mu.Lock()
	u.folders[name] = id
	u.mu.Unlock()
	return id, nil
}

// Result describes one uploaded file.
type Result struct {
	ID   string
	Link string
	Size int64
}

// Upload streams a local file into the folder with a chunked resumable
// upload, then shares it read-only and returns the view link.
func (u *Uploader) Upload(ctx context.Context, path, name, folderID string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	meta := &driveapi.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	created, err := u.svc.Files.Create(meta).
		Media(f, googleapi.ContentType(MIMEFor(name)), googleapi.ChunkSize(uploadChunkSize)).
		Fields("id, webViewLink").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload failed for %s: %w", name, err)
	}

	// Anyone with the link can view. Matches the shareable-link behavior
	// the bot advertises.
	_, err = u.svc.Permissions.Create(created.Id, &driveapi.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sharing failed for %s: %w", name, err)
	}

	return &Result{ID: created.Id, Link: created.WebViewLink, Size: info.Size()}, nil
}

// Quota is the subset of Drive About used by /status and cmd/token -verify.
type Quota struct {
	User  string
	Usage int64
	Limit int64
}

func (u *Uploader) About(ctx context.Context) (*Quota, error) {
	about, err := u.svc.About.Get().Fields("storageQuota, user").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	q := &Quota{}
	if about.User != nil {
		q.User = about.User.EmailAddress
	}
	if about.StorageQuota != nil {
		q.Usage = about.StorageQuota.Usage
		q.Limit = about.StorageQuota.Limit
	}
	return q, nil
}

// folderQuery builds the Drive search query for a folder name. Single quotes
// and backslashes must be escaped inside the quoted literal.
func folderQuery(name string) string {
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escaped, folderMIME)
}

// MIMEFor guesses the content type from the extension, with fixed fallbacks
// for the media the bot produces. Octet-stream otherwise.
func MIMEFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
