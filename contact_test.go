package main

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func TestContactMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     ContactMessage
		wantErr bool
	}{
		{"ok", ContactMessage{"Ada", "ada@example.com", "hi"}, false},
		{"missing name", ContactMessage{" ", "ada@example.com", "hi"}, true},
		{"bad email", ContactMessage{"Ada", "ada.example.com", "hi"}, true},
		{"empty message", ContactMessage{"Ada", "ada@example.com", ""}, true},
		{"header injection", ContactMessage{"Ada", "ada@example.com\r\nBcc: x@y.z", "hi"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSMTPNotifier(t *testing.T) {
	var gotAddr, gotFrom string
	var gotMsg []byte
	n := &smtpNotifier{
		host: "smtp.example.com", port: "587",
		user: "me@example.com", pass: "pw",
		to: "inbox@example.com",
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotMsg = addr, from, msg
			return nil
		},
	}

	err := n.Notify(context.Background(), ContactMessage{"Ada", "ada@example.com", "Hello there"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "me@example.com" {
		t.Errorf("addr/from = %s/%s", gotAddr, gotFrom)
	}
	msg := string(gotMsg)
	for _, want := range []string{"Subject: Portfolio Contact: Ada", "Reply-To: ada@example.com", "Hello there"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, ContactMessage{}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Notify = %v", err)
	}
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, ContactMessage) error {
	c.calls++
	return c.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &countingNotifier{err: errors.New("down")}
	b := withBreaker("test", inner, zap.NewNop())

	for i := 0; i < 3; i++ {
		if err := b.Notify(context.Background(), ContactMessage{}); err == nil {
			t.Fatal("expected failure")
		}
	}
	err := b.Notify(context.Background(), ContactMessage{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("fourth call = %v, want open breaker", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestFanout(t *testing.T) {
	failing := &countingNotifier{err: errors.New("smtp down")}
	working := &countingNotifier{}

	if err := (fanout{failing, working}).Notify(context.Background(), ContactMessage{}); err != nil {
		t.Errorf("fanout with one working channel = %v", err)
	}
	if err := (fanout{failing}).Notify(context.Background(), ContactMessage{}); err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Errorf("fanout with only failures = %v", err)
	}
	if err := (fanout{}).Notify(context.Background(), ContactMessage{}); !errors.Is(err, errNotConfigured) {
		t.Errorf("empty fanout = %v", err)
	}
}

func TestNewNotifierChannels(t *testing.T) {
	n := newNotifier(ContactConfig{SMTPUser: "u", SMTPPass: "p", TelegramToken: "t", TelegramChatID: 42}, zap.NewNop())
	if f, ok := n.(fanout); !ok || len(f) != 2 {
		t.Errorf("newNotifier = %#v, want two channels", n)
	}
	if f := newNotifier(ContactConfig{}, zap.NewNop()).(fanout); len(f) != 0 {
		t.Errorf("unconfigured notifier has %d channels", len(f))
	}
}

func TestClientLimiter(t *testing.T) {
	l := newClientLimiter(1, 2)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Error("third immediate request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other clients have their own bucket")
	}
}
