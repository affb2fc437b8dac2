package relay

import (
	"context"
	"fmt"
	"sync"
)

// MockTransport implements Transport for testing. It records sent messages
// and lets tests inject inbound events via SimulateInbound and canned
// history/dialog snapshots.
type MockTransport struct {
	mu         sync.Mutex
	running    bool
	handlers   Handlers
	self       UserInfo
	sent       []SendRequest
	sendErr    error
	nextMsgID  int64
	history    map[string][]Message
	dialogs    []Chat
	runErr     error
	loginState string

	stopped chan struct{}
}

// NewMockTransport returns a MockTransport that connects as the given user.
func NewMockTransport(self UserInfo) *MockTransport {
	return &MockTransport{
		self:       self,
		nextMsgID:  1000,
		history:    make(map[string][]Message),
		loginState: LoginIdle,
	}
}

// Run marks the transport as connected, fires OnReady, and blocks until the
// context is cancelled.
func (m *MockTransport) Run(ctx context.Context, h Handlers) error {
	m.mu.Lock()
	if m.runErr != nil {
		err := m.runErr
		m.mu.Unlock()
		return err
	}
	m.running = true
	m.handlers = h
	m.loginState = LoginCompleted
	m.stopped = make(chan struct{})
	self := m.self
	m.mu.Unlock()

	if h.OnReady != nil {
		h.OnReady(self)
	}
	<-ctx.Done()

	m.mu.Lock()
	m.running = false
	close(m.stopped)
	m.mu.Unlock()
	return ctx.Err()
}

// Send records the request and returns a synthetic message ID.
func (m *MockTransport) Send(ctx context.Context, req SendRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, req)
	m.nextMsgID++
	return m.nextMsgID, nil
}

// History returns the canned history for chatID, honoring Limit and
// OffsetID the way the real transport pages.
func (m *MockTransport) History(ctx context.Context, chatID string, req HistoryRequest) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.history[chatID]
	var out []Message
	for _, msg := range msgs {
		if req.OffsetID != 0 && msg.ID >= req.OffsetID {
			continue
		}
		out = append(out, msg)
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
	}
	return out, nil
}

// Dialogs returns the canned dialog snapshot.
func (m *MockTransport) Dialogs(ctx context.Context, limit int) ([]Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && len(m.dialogs) > limit {
		return m.dialogs[:limit], nil
	}
	return m.dialogs, nil
}

// Self returns the configured identity.
func (m *MockTransport) Self() UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.self
}

// SubmitCode implements InteractiveAuth.
func (m *MockTransport) SubmitCode(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loginState != LoginWaitingCode {
		return fmt.Errorf("mock transport: not waiting for a code")
	}
	m.loginState = LoginWaitingPassword
	return nil
}

// SubmitPassword implements InteractiveAuth.
func (m *MockTransport) SubmitPassword(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loginState != LoginWaitingPassword {
		return fmt.Errorf("mock transport: not waiting for a password")
	}
	m.loginState = LoginCompleted
	return nil
}

// LoginState implements InteractiveAuth.
func (m *MockTransport) LoginState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginState
}

// SetLoginState forces the login state for testing the interactive flow.
func (m *MockTransport) SetLoginState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginState = state
}

// SimulateInbound delivers a message to the worker's OnMessage handler as
// if it arrived from Telegram.
func (m *MockTransport) SimulateInbound(msg Message) {
	m.mu.Lock()
	h := m.handlers
	m.mu.Unlock()
	if h.OnMessage != nil {
		h.OnMessage(msg)
	}
}

// SetHistory installs the canned history for a chat, newest first.
func (m *MockTransport) SetHistory(chatID string, msgs []Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[chatID] = msgs
}

// SetDialogs installs the canned dialog snapshot.
func (m *MockTransport) SetDialogs(chats []Chat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogs = chats
}

// SetSendError makes subsequent Send calls fail with err.
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetRunError makes Run fail immediately with err.
func (m *MockTransport) SetRunError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runErr = err
}

// SentCount returns how many messages have been sent.
func (m *MockTransport) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// LastSent returns the most recent send request, or false when none.
func (m *MockTransport) LastSent() (SendRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SendRequest{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// AllSent returns a copy of every send request in order.
func (m *MockTransport) AllSent() []SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendRequest, len(m.sent))
	copy(out, m.sent)
	return out
}
