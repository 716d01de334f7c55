// Command test_journal exercises the upload journal against a throwaway
// database: records a few transfers, checks duplicate detection, prints
// aggregate stats. Handy for verifying the sqlite driver on a new machine.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/eliseohh/drivedrop/internal/journal"
)

func main() {
	dir, err := os.MkdirTemp("", "journal-smoke-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	db, err := journal.NewDB(filepath.Join(dir, "transfers.db"))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("✅ schema created")

	entries := []journal.Entry{
		{FileUID: "uid-photo-1", Name: "photo_20260827_101500.jpg", MediaType: "photo", Size: 204800, ChatID: 1001, Folder: "Telegram_Uploads", DriveID: "d1", Link: "https://drive.google.com/file/d/d1"},
		{FileUID: "uid-doc-1", Name: "report.pdf", MediaType: "document", Size: 1 << 20, ChatID: 1001, Folder: "Telegram_Uploads", DriveID: "d2", Link: "https://drive.google.com/file/d/d2"},
		{FileUID: "uid-vid-1", Name: "video_20260827_102200.mp4", MediaType: "video", Size: 8 << 20, ChatID: 1002, Folder: "Telegram_mychannel", DriveID: "d3", Link: "https://drive.google.com/file/d/d3"},
	}
	for _, e := range entries {
		if err := db.Record(e); err != nil {
			log.Fatalf("record %s: %v", e.FileUID, err)
		}
	}
	fmt.Printf("✅ recorded %d transfers\n", len(entries))

	// Same UniqueID must be rejected by the unique index.
	dup := entries[0]
	dup.DriveID = "d99"
	if err := db.Record(dup); err == nil {
		log.Fatal("❌ duplicate file_uid was accepted")
	}
	fmt.Println("✅ duplicate file_uid rejected")

	if prev, ok, err := db.Seen("uid-photo-1"); err != nil {
		log.Fatalf("seen: %v", err)
	} else if !ok {
		log.Fatal("❌ recorded transfer not found")
	} else {
		fmt.Printf("✅ lookup found %s in %s\n", prev.Name, prev.Folder)
	}
	if _, ok, err := db.Seen("uid-never"); err != nil {
		log.Fatalf("seen: %v", err)
	} else if ok {
		log.Fatal("❌ phantom transfer found")
	}
	fmt.Println("✅ unknown file_uid not found")

	stats, err := db.Stats()
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("📊 %d transfers, %d bytes, last at %s\n",
		stats.Count, stats.TotalBytes, stats.LastAt.Format(time.RFC3339))
	if stats.Count != len(entries) {
		log.Fatalf("❌ expected %d transfers in stats, got %d", len(entries), stats.Count)
	}

	if err := db.Nuke(); err != nil {
		log.Fatalf("nuke: %v", err)
	}
	if _, _, err := db.Seen("uid-photo-1"); err == nil {
		log.Fatal("❌ journal still answers after nuke")
	}
	fmt.Println("✅ nuke dropped the journal")

	fmt.Println("\n✅ journal smoke test passed")
}
