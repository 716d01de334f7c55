package transfer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eliseohh/drivedrop/internal/drive"
	"github.com/eliseohh/drivedrop/internal/journal"
)

// Uploader is the Drive surface the queue needs. *drive.Uploader satisfies it.
type Uploader interface {
	EnsureFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, path, name, folderID string) (*drive.Result, error)
}

// Job is one file moving from Telegram to Drive. Fetch downloads the
// Telegram file to a local path; Notify edits the per-transfer status
// message in chat.
type Job struct {
	ChatID    int64
	UniqueID  string
	Name      string
	MediaType string
	Folder    string
	SizeHint  int64

	Fetch  func(dst string) error
	Notify func(text string)
}

// Queue is a bounded worker pool. Telebot runs every update in its own
// goroutine, so without a pool a burst of forwarded videos would download
// concurrently and blow the memory ceiling on small instances.
type Queue struct {
	jobs  chan Job
	wg    sync.WaitGroup
	up    Uploader
	db    *journal.DB
	spool string
}

func NewQueue(up Uploader, db *journal.DB, spoolDir string, workers, backlog int) (*Queue, error) {
	if workers < 1 {
		workers = 1
	}
	if backlog < 1 {
		backlog = 16
	}
	if err := os.MkdirAll(spoolDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create spool dir: %w", err)
	}

	q := &Queue{
		jobs:  make(chan Job, backlog),
		up:    up,
		db:    db,
		spool: spoolDir,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.process(context.Background(), job)
			}
		}()
	}
	return q, nil
}

// Enqueue hands a job to the pool. It fails fast when the backlog is full
// instead of blocking the poller.
func (q *Queue) Enqueue(j Job) error {
	select {
	case q.jobs <- j:
		return nil
	default:
		return fmt.Errorf("transfer queue is full")
	}
}

// Close drains the pool. Pending jobs finish first.
func (q *Queue) Close() {
	close(q.jobs)
	q.wg.Wait()
}

func (q *Queue) process(ctx context.Context, job Job) {
	notify := job.Notify
	if notify == nil {
		notify = func(string) {}
	}

	tmp := filepath.Join(q.spool, fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeName(job.Name)))
	defer os.Remove(tmp)

	notify(fmt.Sprintf("⏳ Downloading %s from Telegram...", job.Name))
	if err := job.Fetch(tmp); err != nil {
		log.Printf("fetch failed for %s: %v", job.Name, err)
		notify(fmt.Sprintf("❌ Upload failed!\n\nFile: %s\nError: %v", job.Name, err))
		return
	}

	folderID, err := q.up.EnsureFolder(ctx, job.Folder)
	if err != nil {
		log.Printf("folder failed for %s: %v", job.Folder, err)
		notify("❌ Failed to create folder on Google Drive")
		return
	}

	notify(fmt.Sprintf("📤 Uploading %s to Google Drive...", job.Name))
	res, err := q.up.Upload(ctx, tmp, job.Name, folderID)
	if err != nil {
		log.Printf("upload failed for %s: %v", job.Name, err)
		notify(fmt.Sprintf("❌ Upload failed!\n\nFile: %s\nError: %v", job.Name, err))
		return
	}

	if err := q.db.Record(journal.Entry{
		FileUID:   job.UniqueID,
		Name:      job.Name,
		MediaType: job.MediaType,
		Size:      res.Size,
		ChatID:    job.ChatID,
		Folder:    job.Folder,
		DriveID:   res.ID,
		Link:      res.Link,
	}); err != nil {
		// Upload succeeded; a journal miss only weakens dup detection.
		log.Printf("journal write failed for %s: %v", job.Name, err)
	}

	notify(fmt.Sprintf("✅ Uploaded successfully!\n\n📁 File: %s\n📂 Location: /%s/%s\n🔗 Google Drive: %s",
		job.Name, job.Folder, job.Name, res.Link))
}

// SweepSpool removes stray temp files older than maxAge. Crashed transfers
// leave them behind.
func SweepSpool(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
