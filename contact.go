package main

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	errNotConfigured = errors.New("no contact channel configured")
	errInvalidForm   = errors.New("name, email and message are required")
)

type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

func (m ContactMessage) validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Message) == "" || !strings.Contains(m.Email, "@") {
		return errInvalidForm
	}
	// Header injection through the reply-to address.
	if strings.ContainsAny(m.Email, "\r\n") || strings.ContainsAny(m.Name, "\r\n") {
		return errInvalidForm
	}
	return nil
}

func (m ContactMessage) body() string {
	return fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, m.Email, m.Message)
}

// Notifier delivers a contact form submission somewhere the owner will see it.
type Notifier interface {
	Notify(ctx context.Context, m ContactMessage) error
}

type smtpNotifier struct {
	host, port string
	user, pass string
	to         string
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (n *smtpNotifier) Notify(ctx context.Context, m ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Portfolio Contact: %s", m.Name)
	msg := []byte("To: " + n.to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + n.user + "\r\n" +
		"Reply-To: " + m.Email + "\r\n" +
		"\r\n" +
		m.body() + "\r\n")

	auth := smtp.PlainAuth("", n.user, n.pass, n.host)
	if err := n.send(n.host+":"+n.port, auth, n.user, []string{n.to}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

type telegramNotifier struct {
	token  string
	chatID int64

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// client connects lazily; NewBotAPI makes a network round trip.
func (n *telegramNotifier) client() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(n.token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	n.bot = bot
	return bot, nil
}

func (n *telegramNotifier) Notify(ctx context.Context, m ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := n.client()
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, "Portfolio Contact\n"+m.body())
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// breakerNotifier stops calling a failing channel for a while instead of
// making every visitor wait on a dead SMTP server.
type breakerNotifier struct {
	next Notifier
	cb   *gobreaker.CircuitBreaker
}

func withBreaker(name string, next Notifier, log *zap.Logger) *breakerNotifier {
	return &breakerNotifier{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Contact channel state changed",
					zap.String("channel", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

func (b *breakerNotifier) Notify(ctx context.Context, m ContactMessage) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Notify(ctx, m)
	})
	return err
}

// fanout succeeds when at least one channel delivered the message.
type fanout []Notifier

func (f fanout) Notify(ctx context.Context, m ContactMessage) error {
	if len(f) == 0 {
		return errNotConfigured
	}
	var errs []error
	for _, n := range f {
		err := n.Notify(ctx, m)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newNotifier(cfg ContactConfig, log *zap.Logger) Notifier {
	var channels fanout
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		channels = append(channels, withBreaker("smtp", &smtpNotifier{
			host: cfg.SMTPHost,
			port: cfg.SMTPPort,
			user: cfg.SMTPUser,
			pass: cfg.SMTPPass,
			to:   cfg.ToEmail,
			send: smtp.SendMail,
		}, log))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		channels = append(channels, withBreaker("telegram", &telegramNotifier{
			token:  cfg.TelegramToken,
			chatID: cfg.TelegramChatID,
		}, log))
	}
	if len(channels) == 0 {
		log.Warn("Contact form has no delivery channel; set SMTP_USER/SMTP_PASS or contact.telegram_*")
	}
	return channels
}

// clientLimiter hands out one token bucket per client key.
type clientLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newClientLimiter(perMinute, burst int) *clientLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (l *clientLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets[key]
	if !ok {
		// Bounded memory; a reset only hands out fresh bursts.
		if len(l.buckets) >= 10000 {
			l.buckets = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
