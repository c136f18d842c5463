// Package notify alerts a supervisor chat when a worker fails the PPE check.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/constants"
	"github.com/kozaktomas/site-attendance/internal/database"
)

// Sender delivers a Telegram message. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options configures a Telegram notifier.
type Options struct {
	Token    string
	ChatID   int64
	Timeout  time.Duration
	Endpoint string // Bot API endpoint format; defaults to tgbotapi.APIEndpoint
}

// Notifier sends PPE failure alerts from a background goroutine. It implements
// attendance.Listener.
type Notifier struct {
	sender Sender
	chatID int64
	queue  chan attendance.Event
	wg     sync.WaitGroup
}

// NewTelegram authorizes the bot and returns a notifier for opts.ChatID.
func NewTelegram(opts Options) (*Notifier, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultStorageTimeout
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	log.Printf("Telegram alerts enabled via @%s", bot.Self.UserName)

	return New(bot, opts.ChatID), nil
}

// New creates a notifier on top of any Sender.
func New(sender Sender, chatID int64) *Notifier {
	return &Notifier{
		sender: sender,
		chatID: chatID,
		queue:  make(chan attendance.Event, constants.EventChannelBuffer),
	}
}

// ShouldAlert reports whether an event is a failed automatic PPE check.
func ShouldAlert(e attendance.Event) bool {
	return e.Type == attendance.EventAttendance &&
		e.Record != nil &&
		e.Record.PPEStatus == database.PPEFailed
}

// HandleEvent queues an alert for failed PPE checks. Alerts are dropped when the
// queue is full.
func (n *Notifier) HandleEvent(e attendance.Event) {
	if !ShouldAlert(e) {
		return
	}
	select {
	case n.queue <- e:
	default:
		log.Printf("Telegram alert queue full, dropping alert for worker %s", e.WorkerID)
	}
}

// Start sends queued alerts until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-n.queue:
				msg := tgbotapi.NewMessage(n.chatID, FormatAlert(e))
				if _, err := n.sender.Send(msg); err != nil {
					log.Printf("Failed to send Telegram alert for worker %s: %v", e.WorkerID, err)
				}
			}
		}
	}()
}

// Wait blocks until the goroutine started by Start has returned.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// FormatAlert renders the alert text for a failed check.
func FormatAlert(e attendance.Event) string {
	var b strings.Builder
	name := e.WorkerName
	if name == "" {
		name = constants.DefaultWorkerName
	}
	fmt.Fprintf(&b, "PPE check failed: %s (ID %s)\n", name, e.WorkerID)
	if e.Record != nil {
		if missing := strings.TrimSpace(e.Record.PPEMissingItems); missing != "" {
			fmt.Fprintf(&b, "Missing: %s\n", missing)
		}
		fmt.Fprintf(&b, "Date: %s", e.Record.Date)
		if !e.Record.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " %s", e.Record.CreatedAt.Local().Format("15:04"))
		}
	}
	return b.String()
}
