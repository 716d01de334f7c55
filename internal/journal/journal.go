package journal

import (
	"database/sql"
	"time"
)

// Entry is one completed Telegram -> Drive transfer.
type Entry struct {
	FileUID   string // Telegram file unique ID, stable across bots
	Name      string
	MediaType string
	Size      int64
	ChatID    int64
	Folder    string
	DriveID   string
	Link      string
	CreatedAt time.Time
}

func (d *DB) Record(e Entry) error {
	at := e.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := d.Exec(`INSERT INTO transfers (file_uid, name, media_type, size, chat_id, folder, drive_id, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FileUID, e.Name, e.MediaType, e.Size, e.ChatID, e.Folder, e.DriveID, e.Link, at.Unix())
	return err
}

// Seen reports whether a file was already transferred and returns the
// recorded entry so the bot can reply with the existing Drive link.
func (d *DB) Seen(fileUID string) (*Entry, bool, error) {
	row := d.QueryRow(`SELECT file_uid, name, media_type, size, chat_id, folder, drive_id, link, created_at
		FROM transfers WHERE file_uid = ?`, fileUID)

	var e Entry
	var at int64
	err := row.Scan(&e.FileUID, &e.Name, &e.MediaType, &e.Size, &e.ChatID, &e.Folder, &e.DriveID, &e.Link, &at)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e.CreatedAt = time.Unix(at, 0)
	return &e, true, nil
}

type Stats struct {
	Count      int
	TotalBytes int64
	LastAt     time.Time
}

func (d *DB) Stats() (Stats, error) {
	var s Stats
	var total sql.NullInt64
	var last sql.NullInt64

	row := d.QueryRow(`SELECT COUNT(*), SUM(size), MAX(created_at) FROM transfers`)
	if err := row.Scan(&s.Count, &total, &last); err != nil {
		return s, err
	}
	s.TotalBytes = total.Int64
	if last.Valid {
		s.LastAt = time.Unix(last.Int64, 0)
	}
	return s, nil
}
