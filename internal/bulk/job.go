package bulk

import (
	"sync"
	"time"
)

// Job is an armed bulk transfer: after /bulk @channel the bot routes
// forwarded messages from that channel into the channel folder until the
// limit is reached.
type Job struct {
	Opts     Options
	FolderID string
	Folder   string

	mu    sync.Mutex
	taken int
}

func NewJob(opts *Options, folder, folderID string) *Job {
	return &Job{Opts: *opts, Folder: folder, FolderID: folderID}
}

// Take claims one slot for a message if it passes the filters and the
// limit is not exhausted yet.
func (j *Job) Take(mediaType string, sent, now time.Time) bool {
	if !j.Opts.Allows(mediaType, sent, now) {
		return false
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Opts.Limit > 0 && j.taken >= j.Opts.Limit {
		return false
	}
	j.taken++
	return true
}

func (j *Job) Taken() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.taken
}

// Done reports whether the job consumed its limit. Unlimited jobs never finish
// on their own; a new /bulk replaces them.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Opts.Limit > 0 && j.taken >= j.Opts.Limit
}
