// Package relay runs the per-client session workers that receive Telegram
// messages, pass them through the rule pipeline, and forward the survivors.
package relay

import (
	"context"
	"time"

	"github.com/zulandar/semaphore/internal/pipeline"
)

// Transport is the interface that Telegram client implementations must
// satisfy. The production implementation lives in internal/relay/mtproto;
// tests use MockTransport.
type Transport interface {
	// Run connects, authenticates, and blocks on the receive loop until the
	// context is cancelled or the connection fails. Handlers are invoked from
	// the transport's receive goroutine; OnReady fires once after the client
	// is authenticated and self-resolved.
	Run(ctx context.Context, h Handlers) error

	// Send delivers one message and returns the new message's ID.
	Send(ctx context.Context, req SendRequest) (int64, error)

	// History fetches messages from a chat, newest first.
	History(ctx context.Context, chatID string, req HistoryRequest) ([]Message, error)

	// Dialogs returns a snapshot of the account's open chats.
	Dialogs(ctx context.Context, limit int) ([]Chat, error)

	// Self returns the authenticated identity. Only valid after OnReady.
	Self() UserInfo
}

// Handlers carries the worker callbacks a Transport invokes.
type Handlers struct {
	// OnReady fires once the client is connected and authenticated.
	OnReady func(self UserInfo)

	// OnMessage fires for each inbound new or edited message.
	OnMessage func(msg Message)
}

// Message is one inbound or historical Telegram message in canonical form.
type Message struct {
	ID     int64
	ChatID string // canonical chat ID, see mtproto.CanonicalChatID
	Text   string
	Kind   pipeline.MediaKind
	Edited bool
	Date   time.Time

	// Media is an opaque transport-specific handle re-attached on Send.
	Media interface{}
}

// SendRequest describes one outbound message.
type SendRequest struct {
	ChatID         string
	Text           string
	DisablePreview bool
	// Media re-attaches an inbound message's media handle.
	Media interface{}
}

// HistoryRequest bounds a history fetch.
type HistoryRequest struct {
	Limit    int
	OffsetID int64
	Since    time.Time
	Until    time.Time
}

// Chat is one entry from a dialogs snapshot.
type Chat struct {
	ID    string // canonical chat ID
	Title string
	Kind  string // "user", "group", "channel"
}

// UserInfo identifies the authenticated account.
type UserInfo struct {
	ID        int64
	Username  string
	FirstName string
	Phone     string
	IsBot     bool
}

// Login flow states, reported through status observers while an
// interactive authentication is in progress.
const (
	LoginIdle            = "idle"
	LoginWaitingCode     = "waiting_code"
	LoginWaitingPassword = "waiting_password"
	LoginCompleted       = "completed"
)

// Status is a point-in-time snapshot of one worker.
type Status struct {
	ClientID   string    `json:"client_id"`
	Kind       string    `json:"kind"`
	Running    bool      `json:"running"`
	Connected  bool      `json:"connected"`
	LoginState string    `json:"login_state"`
	Self       UserInfo  `json:"self"`
	LastError  string    `json:"last_error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
}

// StatusObserver receives worker lifecycle notifications.
type StatusObserver func(s Status)
