package mtproto

import (
	"context"
	"fmt"
	"sync"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/zulandar/semaphore/internal/relay"
)

// loginBridge implements auth.UserAuthenticator by parking the gotd auth
// flow on channels until the code or password arrives from the API or CLI.
// It doubles as the login state machine exposed through relay.InteractiveAuth.
type loginBridge struct {
	phone string

	mu     sync.Mutex
	state  string
	codeCh chan string
	passCh chan string
}

func newLoginBridge(phone string) *loginBridge {
	return &loginBridge{
		phone:  phone,
		state:  relay.LoginIdle,
		codeCh: make(chan string, 1),
		passCh: make(chan string, 1),
	}
}

func (b *loginBridge) setState(s string) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// State returns the current login flow state.
func (b *loginBridge) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SubmitCode delivers the SMS/app code to a waiting flow.
func (b *loginBridge) SubmitCode(code string) error {
	if b.State() != relay.LoginWaitingCode {
		return fmt.Errorf("mtproto: login flow is not waiting for a code")
	}
	select {
	case b.codeCh <- code:
		return nil
	default:
		return fmt.Errorf("mtproto: code already submitted")
	}
}

// SubmitPassword delivers the 2FA password to a waiting flow.
func (b *loginBridge) SubmitPassword(password string) error {
	if b.State() != relay.LoginWaitingPassword {
		return fmt.Errorf("mtproto: login flow is not waiting for a password")
	}
	select {
	case b.passCh <- password:
		return nil
	default:
		return fmt.Errorf("mtproto: password already submitted")
	}
}

// Phone implements auth.UserAuthenticator.
func (b *loginBridge) Phone(ctx context.Context) (string, error) {
	return b.phone, nil
}

// Code implements auth.UserAuthenticator. It blocks until SubmitCode or
// context cancellation.
func (b *loginBridge) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	b.setState(relay.LoginWaitingCode)
	select {
	case code := <-b.codeCh:
		return code, nil
	case <-ctx.Done():
		b.setState(relay.LoginIdle)
		return "", fmt.Errorf("mtproto: waiting for login code: %w", ctx.Err())
	}
}

// Password implements auth.UserAuthenticator. It blocks until
// SubmitPassword or context cancellation.
func (b *loginBridge) Password(ctx context.Context) (string, error) {
	b.setState(relay.LoginWaitingPassword)
	select {
	case password := <-b.passCh:
		return password, nil
	case <-ctx.Done():
		b.setState(relay.LoginIdle)
		return "", fmt.Errorf("mtproto: waiting for 2FA password: %w", ctx.Err())
	}
}

// AcceptTermsOfService implements auth.UserAuthenticator.
func (b *loginBridge) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return nil
}

// SignUp implements auth.UserAuthenticator. New-account registration is
// not supported; the account must already exist.
func (b *loginBridge) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, fmt.Errorf("mtproto: account %s is not registered", b.phone)
}
