package journal

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir, _ := os.MkdirTemp("", "journal_test")
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	db, err := NewDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InitSchema(); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestJournal(t *testing.T) {
	db := newTestDB(t)

	t.Run("Record And Seen", func(t *testing.T) {
		e := Entry{
			FileUID:   "AQAD123",
			Name:      "photo_20260101_120000.jpg",
			MediaType: "photo",
			Size:      2048,
			ChatID:    42,
			Folder:    "Telegram_Uploads",
			DriveID:   "drive-id-1",
			Link:      "https://drive.google.com/file/d/drive-id-1/view",
		}
		if err := db.Record(e); err != nil {
			t.Fatal(err)
		}

		got, ok, err := db.Seen("AQAD123")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected entry to be found")
		}
		if got.Link != e.Link || got.Size != e.Size || got.Folder != e.Folder {
			t.Errorf("entry mismatch: %+v", got)
		}
	})

	t.Run("Seen Unknown", func(t *testing.T) {
		_, ok, err := db.Seen("nope")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("unknown file reported as seen")
		}
	})

	t.Run("Duplicate UID Rejected", func(t *testing.T) {
		err := db.Record(Entry{FileUID: "AQAD123", Name: "x", MediaType: "photo", ChatID: 1, Folder: "f", DriveID: "d", Link: "l"})
		if err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("Stats", func(t *testing.T) {
		if err := db.Record(Entry{FileUID: "AQAD999", Name: "video.mp4", MediaType: "video", Size: 1000, ChatID: 42, Folder: "Telegram_Uploads", DriveID: "d2", Link: "l2"}); err != nil {
			t.Fatal(err)
		}

		s, err := db.Stats()
		if err != nil {
			t.Fatal(err)
		}
		if s.Count != 2 {
			t.Errorf("Count = %d, want 2", s.Count)
		}
		if s.TotalBytes != 3048 {
			t.Errorf("TotalBytes = %d, want 3048", s.TotalBytes)
		}
		if s.LastAt.IsZero() {
			t.Error("LastAt not set")
		}
	})
}

func TestStatsEmpty(t *testing.T) {
	db := newTestDB(t)

	s, err := db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 0 || s.TotalBytes != 0 {
		t.Errorf("empty journal stats = %+v", s)
	}
	if !s.LastAt.IsZero() {
		t.Error("LastAt should be zero on empty journal")
	}
}
