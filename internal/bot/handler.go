package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eliseohh/drivedrop/internal/bulk"
	"github.com/eliseohh/drivedrop/internal/drive"
	"github.com/eliseohh/drivedrop/internal/journal"
	"github.com/eliseohh/drivedrop/internal/transfer"
	tele "gopkg.in/telebot.v3"
)

// Drive is the slice of the uploader the handlers call directly. The heavy
// lifting goes through the transfer queue.
type Drive interface {
	EnsureFolder(ctx context.Context, name string) (string, error)
	About(ctx context.Context) (*drive.Quota, error)
}

type Bot struct {
	api   *tele.Bot
	db    *journal.DB
	drive Drive
	queue *transfer.Queue
	cfg   Config

	// Armed /bulk jobs, one per chat.
	jobs sync.Map // int64 -> *bulk.Job

	// Channel lookup, swappable in tests.
	lookup func(username string) (*tele.Chat, error)
}

type Config struct {
	Token string
}

func New(cfg Config, db *journal.DB, dr Drive, q *transfer.Queue) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{api: b, db: db, drive: dr, queue: q, cfg: cfg}
	bot.lookup = b.ChatByUsername
	bot.register()
	return bot, nil
}

func (b *Bot) Start() {
	fmt.Printf("Bot started: %s\n", b.api.Me.Username)
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

func (b *Bot) register() {
	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/help", b.handleHelp)
	b.api.Handle("/status", b.handleStatus)
	b.api.Handle("/bulk", b.handleBulk)

	b.registerMedia()

	// Plain text gets a nudge towards the actual workflow.
	b.api.Handle(tele.OnText, func(c tele.Context) error {
		return c.Send("📎 Send me a file (photo, video, document, audio, voice) and I'll upload it to Google Drive.\nUse /help for commands.")
	})
}

func (b *Bot) handleStart(c tele.Context) error {
	welcome := `🤖 *Telegram to Google Drive Bot*

I'm ready to help you transfer files to Google Drive!

*Features:*
✅ Single file upload (photos, videos, documents, audio)
✅ Bulk channel transfer with range selection
✅ Automatic folder organization
✅ Shareable Drive links

*Commands:*
• Send any file directly
• /bulk @channel\_name - Transfer all media
• /bulk @channel\_name limit=10 - Latest 10
• /bulk @channel\_name days=7 - Last 7 days
• /bulk @channel\_name photos\_only - Only images
• /bulk @channel\_name videos\_only limit=20 - 20 latest videos`
	return c.Send(welcome, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleHelp(c tele.Context) error {
	help := `🆘 *Help & Commands*

*Single file upload:*
Simply send any file (photo, video, document, audio, voice).

*Bulk channel transfer:*
/bulk @channel\_name
/bulk @channel\_name limit=10
/bulk @channel\_name days=7
/bulk @channel\_name photos\_only
/bulk @channel\_name videos\_only

After arming /bulk, forward messages from the channel to me and I'll
route them into the channel folder with your filters applied.

*File organization:*
• Direct uploads: /Telegram\_Uploads/
• Forwarded files: /Telegram\_ForwardedMessages/
• Channel transfers: /Telegram\_[ChannelName]/`
	return c.Send(help, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) handleStatus(c tele.Context) error {
	stats, err := b.db.Stats()
	if err != nil {
		return c.Send(fmt.Sprintf("❌ Journal error: %v", err))
	}

	msg := fmt.Sprintf("📊 *Bot Status*\n\n🟢 Online & Ready\n📁 Transfers: %d\n💾 Total: %s",
		stats.Count, fmtBytes(stats.TotalBytes))
	if !stats.LastAt.IsZero() {
		msg += fmt.Sprintf("\n🕐 Last transfer: %s", stats.LastAt.Format("2006-01-02 15:04"))
	}

	if b.drive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if q, err := b.drive.About(ctx); err == nil {
			msg += fmt.Sprintf("\n\n☁️ *Google Drive:* Connected (%s)", q.User)
			if q.Limit > 0 {
				msg += fmt.Sprintf("\n📦 Quota: %s / %s", fmtBytes(q.Usage), fmtBytes(q.Limit))
			}
		} else {
			msg += "\n\n⚠️ *Google Drive:* Unreachable"
		}
	}

	if j := b.jobFor(chatID(c)); j != nil {
		msg += fmt.Sprintf("\n\n🔄 *Bulk job armed:* @%s (%d taken)", j.Opts.Channel, j.Taken())
	}

	return c.Send(msg, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (b *Bot) jobFor(chat int64) *bulk.Job {
	v, ok := b.jobs.Load(chat)
	if !ok {
		return nil
	}
	return v.(*bulk.Job)
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func fmtBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
