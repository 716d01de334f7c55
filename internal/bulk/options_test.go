package bulk

import (
	"strings"
	"testing"
	"time"
)

func TestParseArgs(t *testing.T) {
	t.Run("Channel Only", func(t *testing.T) {
		opts, err := ParseArgs([]string{"@mychannel"})
		if err != nil {
			t.Fatal(err)
		}
		if opts.Channel != "mychannel" {
			t.Errorf("Channel = %q", opts.Channel)
		}
		if opts.Limit != 0 || opts.Days != 0 || opts.PhotosOnly || opts.VideosOnly {
			t.Errorf("unexpected defaults: %+v", opts)
		}
	})

	t.Run("Full Options", func(t *testing.T) {
		opts, err := ParseArgs([]string{"@c", "limit=10", "days=7", "videos_only"})
		if err != nil {
			t.Fatal(err)
		}
		if opts.Limit != 10 || opts.Days != 7 || !opts.VideosOnly {
			t.Errorf("parsed: %+v", opts)
		}
	})

	t.Run("Missing Channel", func(t *testing.T) {
		if _, err := ParseArgs(nil); err == nil {
			t.Error("expected error for empty args")
		}
	})

	t.Run("No At Prefix", func(t *testing.T) {
		_, err := ParseArgs([]string{"mychannel"})
		if err == nil || !strings.Contains(err.Error(), "@") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("Bare At", func(t *testing.T) {
		if _, err := ParseArgs([]string{"@"}); err == nil {
			t.Error("expected error for bare @")
		}
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		for _, bad := range []string{"limit=abc", "limit=0", "limit=-3", "limit=9999"} {
			if _, err := ParseArgs([]string{"@c", bad}); err == nil {
				t.Errorf("%s accepted", bad)
			}
		}
	})

	t.Run("Invalid Days", func(t *testing.T) {
		for _, bad := range []string{"days=", "days=0", "days=400"} {
			if _, err := ParseArgs([]string{"@c", bad}); err == nil {
				t.Errorf("%s accepted", bad)
			}
		}
	})

	t.Run("Conflicting Filters", func(t *testing.T) {
		if _, err := ParseArgs([]string{"@c", "photos_only", "videos_only"}); err == nil {
			t.Error("photos_only + videos_only accepted")
		}
	})

	t.Run("Unknown Option", func(t *testing.T) {
		if _, err := ParseArgs([]string{"@c", "turbo"}); err == nil {
			t.Error("unknown option accepted")
		}
	})
}

func TestOptionsAllows(t *testing.T) {
	now := time.Now()

	t.Run("Photos Only", func(t *testing.T) {
		o := Options{PhotosOnly: true}
		if !o.Allows("photo", now, now) {
			t.Error("photo rejected")
		}
		if o.Allows("video", now, now) {
			t.Error("video accepted")
		}
	})

	t.Run("Videos Only Includes Animation", func(t *testing.T) {
		o := Options{VideosOnly: true}
		if !o.Allows("video", now, now) || !o.Allows("animation", now, now) {
			t.Error("video/animation rejected")
		}
		if o.Allows("document", now, now) {
			t.Error("document accepted")
		}
	})

	t.Run("Days Cutoff", func(t *testing.T) {
		o := Options{Days: 7}
		if !o.Allows("photo", now.AddDate(0, 0, -3), now) {
			t.Error("recent message rejected")
		}
		if o.Allows("photo", now.AddDate(0, 0, -10), now) {
			t.Error("stale message accepted")
		}
	})
}

func TestJobTake(t *testing.T) {
	now := time.Now()

	t.Run("Limit Countdown", func(t *testing.T) {
		j := NewJob(&Options{Channel: "c", Limit: 2}, "Telegram_c", "fid")
		if !j.Take("photo", now, now) || !j.Take("video", now, now) {
			t.Fatal("takes under limit rejected")
		}
		if j.Take("photo", now, now) {
			t.Error("take over limit accepted")
		}
		if !j.Done() {
			t.Error("job not done after limit")
		}
		if j.Taken() != 2 {
			t.Errorf("Taken = %d", j.Taken())
		}
	})

	t.Run("Filtered Take Does Not Count", func(t *testing.T) {
		j := NewJob(&Options{Channel: "c", Limit: 1, PhotosOnly: true}, "Telegram_c", "fid")
		if j.Take("video", now, now) {
			t.Error("filtered media taken")
		}
		if j.Taken() != 0 {
			t.Error("filtered take counted")
		}
	})

	t.Run("Unlimited Never Done", func(t *testing.T) {
		j := NewJob(&Options{Channel: "c"}, "Telegram_c", "fid")
		for i := 0; i < 100; i++ {
			if !j.Take("document", now, now) {
				t.Fatal("unlimited take rejected")
			}
		}
		if j.Done() {
			t.Error("unlimited job reported done")
		}
	})
}
