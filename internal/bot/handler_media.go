package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/eliseohh/drivedrop/internal/transfer"
	tele "gopkg.in/telebot.v3"
)

func (b *Bot) registerMedia() {
	for _, ev := range []string{
		tele.OnDocument,
		tele.OnPhoto,
		tele.OnVideo,
		tele.OnAnimation,
		tele.OnAudio,
		tele.OnVoice,
	} {
		b.api.Handle(ev, b.handleMedia)
	}
}

func (b *Bot) handleMedia(c tele.Context) error {
	m := c.Message()
	kind, file, name := extractMedia(m, time.Now())
	if file == nil {
		return c.Send("❌ Unsupported media type")
	}

	// Already on Drive? Reply with the stored link instead of re-uploading.
	if prev, ok, err := b.db.Seen(file.UniqueID); err == nil && ok {
		return c.Send(fmt.Sprintf("♻️ Already uploaded as %s\n🔗 %s", prev.Name, prev.Link))
	}

	folder, bulkDone := b.routeFolder(m, kind, time.Now())

	status, err := b.api.Send(c.Chat(), fmt.Sprintf("📤 Uploading %s: %s...", kind, name))
	if err != nil {
		return err
	}

	f := *file // the message is gone once the handler returns
	job := transferJob(c.Chat().ID, f, kind, name, folder)
	job.Fetch = func(dst string) error { return b.api.Download(&f, dst) }
	job.Notify = func(text string) { b.api.Edit(status, text) }

	if err := b.queue.Enqueue(job); err != nil {
		b.api.Edit(status, "⚠️ Too many transfers in flight, try again in a moment.")
		return nil
	}

	if bulkDone {
		j := b.jobFor(c.Chat().ID)
		b.jobs.Delete(c.Chat().ID)
		if j != nil {
			c.Send(fmt.Sprintf("🏁 Bulk transfer from @%s complete: %d files queued.", j.Opts.Channel, j.Taken()))
		}
	}
	return nil
}

// routeFolder picks the Drive folder for a message: an armed bulk job claims
// forwards from its channel, other forwards and direct uploads get the fixed
// folders. The second result reports that this take exhausted the bulk job.
func (b *Bot) routeFolder(m *tele.Message, kind string, now time.Time) (string, bool) {
	if m.Chat != nil {
		if j := b.jobFor(m.Chat.ID); j != nil && fromChannel(m, j.Opts.Channel) {
			if j.Take(kind, forwardTime(m), now) {
				return j.Folder, j.Done()
			}
		}
	}
	if m.IsForwarded() {
		return "Telegram_ForwardedMessages", false
	}
	return "Telegram_Uploads", false
}

func transferJob(chat int64, f tele.File, kind, name, folder string) transfer.Job {
	return transfer.Job{
		ChatID:    chat,
		UniqueID:  f.UniqueID,
		Name:      name,
		MediaType: kind,
		Folder:    folder,
		SizeHint:  f.FileSize,
	}
}

func fromChannel(m *tele.Message, channel string) bool {
	return m.OriginalChat != nil && strings.EqualFold(m.OriginalChat.Username, channel)
}

// forwardTime is the original send time of a forwarded message, used for the
// days= filter. Falls back to the message's own time.
func forwardTime(m *tele.Message) time.Time {
	if m.OriginalUnixtime > 0 {
		return time.Unix(int64(m.OriginalUnixtime), 0)
	}
	return m.Time()
}

// extractMedia pulls the Telegram file handle and a target file name out of
// the message. Documents keep their name; everything else gets a timestamped
// default, matching the folder layout users already have.
func extractMedia(m *tele.Message, now time.Time) (kind string, file *tele.File, name string) {
	ts := now.Format("20060102_150405")
	switch {
	case m.Document != nil:
		name = m.Document.FileName
		if name == "" {
			name = "document_" + ts
		}
		return "document", &m.Document.File, name

	case m.Photo != nil:
		return "photo", &m.Photo.File, "photo_" + ts + ".jpg"

	case m.Video != nil:
		name = m.Video.FileName
		if name == "" {
			name = "video_" + ts + ".mp4"
		}
		return "video", &m.Video.File, name

	case m.Animation != nil:
		name = m.Animation.FileName
		if name == "" {
			name = "animation_" + ts + ".gif"
		}
		return "animation", &m.Animation.File, name

	case m.Audio != nil:
		name = m.Audio.FileName
		if name == "" {
			name = "audio_" + ts + ".mp3"
		}
		return "audio", &m.Audio.File, name

	case m.Voice != nil:
		return "voice", &m.Voice.File, "voice_" + ts + ".ogg"
	}
	return "", nil, ""
}
