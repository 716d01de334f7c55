package bulk

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Bot API history access is off the table, so bulk jobs are fed by
	// forwarded messages. Cap how many a single job may consume.
	MaxLimit = 500
	MaxDays  = 365
)

// Options is a parsed /bulk command:
// /bulk @channel [limit=N] [days=N] [photos_only] [videos_only]
type Options struct {
	Channel    string // without the leading @
	Limit      int    // 0 = unlimited
	Days       int    // 0 = all time
	PhotosOnly bool
	VideosOnly bool
}

func ParseArgs(args []string) (*Options, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing channel")
	}

	if !strings.HasPrefix(args[0], "@") {
		return nil, fmt.Errorf("channel name must start with @")
	}
	opts := &Options{Channel: strings.TrimPrefix(args[0], "@")}
	if opts.Channel == "" {
		return nil, fmt.Errorf("missing channel")
	}

	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "limit="))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid limit value")
			}
			if n > MaxLimit {
				return nil, fmt.Errorf("limit exceeds %d", MaxLimit)
			}
			opts.Limit = n

		case strings.HasPrefix(arg, "days="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "days="))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid days value")
			}
			if n > MaxDays {
				return nil, fmt.Errorf("days exceeds %d", MaxDays)
			}
			opts.Days = n

		case arg == "photos_only":
			opts.PhotosOnly = true

		case arg == "videos_only":
			opts.VideosOnly = true

		default:
			return nil, fmt.Errorf("unknown option: %s", arg)
		}
	}

	if opts.PhotosOnly && opts.VideosOnly {
		return nil, fmt.Errorf("photos_only and videos_only are mutually exclusive")
	}

	return opts, nil
}

// Cutoff returns the oldest message time the job accepts. Zero means no cutoff.
func (o *Options) Cutoff(now time.Time) time.Time {
	if o.Days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -o.Days)
}

// Allows applies the media-type and date filters to one message.
func (o *Options) Allows(mediaType string, sent, now time.Time) bool {
	if o.PhotosOnly && mediaType != "photo" {
		return false
	}
	if o.VideosOnly && mediaType != "video" && mediaType != "animation" {
		return false
	}
	if cutoff := o.Cutoff(now); !cutoff.IsZero() && sent.Before(cutoff) {
		return false
	}
	return true
}

// Describe renders the transfer plan shown to the user.
func (o *Options) Describe() string {
	limit := "All"
	if o.Limit > 0 {
		limit = strconv.Itoa(o.Limit)
	}
	days := "All time"
	if o.Days > 0 {
		days = fmt.Sprintf("Last %d days", o.Days)
	}
	filter := "All media"
	if o.PhotosOnly {
		filter = "Photos only"
	}
	if o.VideosOnly {
		filter = "Videos only"
	}
	return fmt.Sprintf("Channel: @%s\nLimit: %s\nDays: %s\nFilter: %s", o.Channel, limit, days, filter)
}
