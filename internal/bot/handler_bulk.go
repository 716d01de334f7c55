package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eliseohh/drivedrop/internal/bulk"
	tele "gopkg.in/telebot.v3"
)

const bulkUsage = `❌ Please specify a channel.

Examples:
/bulk @channel_name
/bulk @channel_name limit=10
/bulk @channel_name days=7
/bulk @channel_name photos_only`

func (b *Bot) handleBulk(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) == 0 {
		return c.Send(bulkUsage)
	}

	opts, err := bulk.ParseArgs(args)
	if err != nil {
		return c.Send(fmt.Sprintf("❌ %v", err))
	}

	// The bot must be able to see the channel at all before arming a job.
	if _, err := b.lookup("@" + opts.Channel); err != nil {
		c.Send(fmt.Sprintf("❌ Cannot access channel @%s\nError: %v", opts.Channel, err))
		return c.Send(`🔧 *Solutions:*
1. Add this bot to the channel as admin
2. Make the channel public
3. Forward messages manually to the bot`, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}

	folder := "Telegram_" + opts.Channel

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	folderID, err := b.drive.EnsureFolder(ctx, folder)
	if err != nil {
		return c.Send("❌ Failed to create folder on Google Drive")
	}

	b.jobs.Store(chatID(c), bulk.NewJob(opts, folder, folderID))

	return c.Send(fmt.Sprintf(`📋 *Bulk Transfer Armed*

%s
Folder: %s

The Bot API can't read channel history, so forward messages from
@%s to me now. Matching media lands in the channel folder until the
limit is reached. A new /bulk replaces this job.`,
		opts.Describe(), folder, opts.Channel),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
}
