package relay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/pipeline"
	"github.com/zulandar/semaphore/internal/store"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 10 * time.Second
	syncTimeout  = 10 * time.Second
)

// InteractiveAuth is implemented by transports that support the interactive
// user login flow (SMS code, optional 2FA password).
type InteractiveAuth interface {
	SubmitCode(code string) error
	SubmitPassword(password string) error
	LoginState() string
}

// WorkerOpts holds parameters for creating a Worker.
type WorkerOpts struct {
	ClientID  string
	Kind      string // models.ClientKindUser or models.ClientKindBot
	DB        *gorm.DB
	Transport Transport
	Observers []StatusObserver
}

// Worker owns one Telegram client session. It runs the transport's receive
// loop on its own goroutine, handles each inbound event on a fresh
// goroutine, and accepts submitted tasks (replay, chat sync) that must run
// inside the session's context.
type Worker struct {
	clientID  string
	kind      string
	gdb       *gorm.DB
	transport Transport
	observers []StatusObserver

	mu         sync.Mutex
	running    bool
	connected  bool
	loginState string
	self       UserInfo
	lastErr    string
	startedAt  time.Time
	monitored  map[string]bool
	cancel     context.CancelFunc
	done       chan struct{}
	tasks      chan func(ctx context.Context)
}

// NewWorker validates opts and returns a stopped Worker.
func NewWorker(opts WorkerOpts) (*Worker, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("relay: client ID is required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("relay: db is required")
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("relay: transport is required")
	}
	kind := opts.Kind
	if kind == "" {
		kind = models.ClientKindUser
	}
	return &Worker{
		clientID:   opts.ClientID,
		kind:       kind,
		gdb:        opts.DB,
		transport:  opts.Transport,
		observers:  opts.Observers,
		loginState: LoginIdle,
		monitored:  make(map[string]bool),
	}, nil
}

// ClientID returns the worker's client identifier.
func (w *Worker) ClientID() string { return w.clientID }

// Start launches the session goroutine and waits up to 30 seconds for the
// transport to connect and authenticate. Calling Start on a running worker
// is an error.
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("relay[%s]: already running", w.clientID)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.running = true
	w.connected = false
	w.lastErr = ""
	w.startedAt = time.Now()
	w.cancel = cancel
	w.done = make(chan struct{})
	w.tasks = make(chan func(ctx context.Context), 16)
	done := w.done
	tasks := w.tasks
	w.mu.Unlock()

	ready := make(chan struct{})

	go func() {
		defer close(done)
		err := w.transport.Run(ctx, Handlers{
			OnReady: func(self UserInfo) {
				w.onReady(self)
				close(ready)
				go w.pumpTasks(ctx, tasks)
			},
			OnMessage: func(msg Message) {
				go w.handleMessage(ctx, msg)
			},
		})
		w.onExit(err)
	}()

	select {
	case <-ready:
		return nil
	case <-done:
		w.mu.Lock()
		lastErr := w.lastErr
		w.mu.Unlock()
		return fmt.Errorf("relay[%s]: session ended before connecting: %s", w.clientID, lastErr)
	case <-time.After(startTimeout):
		// The session keeps trying in the background; interactive logins
		// legitimately exceed the bound while waiting for a code.
		if auth, ok := w.transport.(InteractiveAuth); ok && auth.LoginState() != LoginIdle {
			return nil
		}
		return fmt.Errorf("relay[%s]: not connected after %s", w.clientID, startTimeout)
	}
}

// Stop cancels the session and waits up to 10 seconds for the goroutine to
// exit. Stopping a stopped worker is a no-op.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		log.Printf("relay[%s]: session did not stop within %s", w.clientID, stopTimeout)
	}

	w.mu.Lock()
	w.running = false
	w.connected = false
	w.mu.Unlock()
	w.notify()
	return nil
}

// Status returns a point-in-time snapshot.
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := w.loginState
	if auth, ok := w.transport.(InteractiveAuth); ok {
		state = auth.LoginState()
	}
	return Status{
		ClientID:   w.clientID,
		Kind:       w.kind,
		Running:    w.running,
		Connected:  w.connected,
		LoginState: state,
		Self:       w.self,
		LastError:  w.lastErr,
		StartedAt:  w.startedAt,
	}
}

// Connected reports whether the session is currently authenticated.
func (w *Worker) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// SubmitCode forwards a login code into the transport's auth flow.
func (w *Worker) SubmitCode(code string) error {
	auth, ok := w.transport.(InteractiveAuth)
	if !ok {
		return fmt.Errorf("relay[%s]: transport does not support interactive login", w.clientID)
	}
	return auth.SubmitCode(code)
}

// SubmitPassword forwards a 2FA password into the transport's auth flow.
func (w *Worker) SubmitPassword(password string) error {
	auth, ok := w.transport.(InteractiveAuth)
	if !ok {
		return fmt.Errorf("relay[%s]: transport does not support interactive login", w.clientID)
	}
	return auth.SubmitPassword(password)
}

// Submit queues a task to run inside the session context. It fails when the
// worker is not connected or the queue is full.
func (w *Worker) Submit(task func(ctx context.Context)) error {
	w.mu.Lock()
	connected := w.connected
	tasks := w.tasks
	w.mu.Unlock()
	if !connected || tasks == nil {
		return fmt.Errorf("relay[%s]: not connected", w.clientID)
	}
	select {
	case tasks <- task:
		return nil
	default:
		return fmt.Errorf("relay[%s]: task queue full", w.clientID)
	}
}

// ChatsSync returns a dialogs snapshot, waiting at most 10 seconds.
func (w *Worker) ChatsSync() ([]Chat, error) {
	type result struct {
		chats []Chat
		err   error
	}
	ch := make(chan result, 1)
	err := w.Submit(func(ctx context.Context) {
		chats, err := w.transport.Dialogs(ctx, 100)
		ch <- result{chats, err}
	})
	if err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("relay[%s]: dialogs: %w", w.clientID, r.err)
		}
		return r.chats, nil
	case <-time.After(syncTimeout):
		return nil, fmt.Errorf("relay[%s]: dialogs timed out after %s", w.clientID, syncTimeout)
	}
}

// RefreshMonitoredChats recomputes the monitored-chat set from the distinct
// source chats of all active rules.
func (w *Worker) RefreshMonitoredChats() error {
	chats, err := store.DistinctActiveSourceChats(w.gdb)
	if err != nil {
		return fmt.Errorf("relay[%s]: refresh monitored chats: %w", w.clientID, err)
	}
	set := make(map[string]bool, len(chats))
	for _, c := range chats {
		set[c] = true
	}
	w.mu.Lock()
	w.monitored = set
	w.mu.Unlock()
	log.Printf("relay[%s]: monitoring %d chats", w.clientID, len(set))
	return nil
}

func (w *Worker) onReady(self UserInfo) {
	w.mu.Lock()
	w.connected = true
	w.self = self
	w.loginState = LoginCompleted
	w.mu.Unlock()
	log.Printf("relay[%s]: connected as %s (id=%d)", w.clientID, self.Username, self.ID)
	if err := w.RefreshMonitoredChats(); err != nil {
		log.Printf("relay[%s]: %v", w.clientID, err)
	}
	w.notify()
}

func (w *Worker) onExit(err error) {
	w.mu.Lock()
	w.connected = false
	w.running = false
	if err != nil && err != context.Canceled {
		w.lastErr = err.Error()
		log.Printf("relay[%s]: session ended: %v", w.clientID, err)
	}
	w.mu.Unlock()
	w.notify()
}

func (w *Worker) pumpTasks(ctx context.Context, tasks chan func(ctx context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-tasks:
			task(ctx)
		}
	}
}

func (w *Worker) notify() {
	s := w.Status()
	for _, obs := range w.observers {
		obs(s)
	}
}

// handleMessage runs the full rule pipeline for one inbound event. Edited
// messages share this path. Each applicable rule is processed concurrently;
// one rule's failure never affects another's.
func (w *Worker) handleMessage(ctx context.Context, msg Message) {
	w.mu.Lock()
	watched := w.monitored[msg.ChatID]
	w.mu.Unlock()
	if !watched {
		return
	}

	rules, err := store.ActiveRulesBySourceChat(w.gdb, msg.ChatID)
	if err != nil {
		log.Printf("relay[%s]: load rules for chat %s: %v", w.clientID, msg.ChatID, err)
		return
	}
	if len(rules) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := range rules {
		rule := rules[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.applyRule(ctx, &rule, msg)
		}()
	}
	wg.Wait()
}

// applyRule runs one rule's gate chain against one message and records the
// outcome in the ledger. Gate order: content type, time window, keyword
// filter + replacement, truncation, delay, send.
func (w *Worker) applyRule(ctx context.Context, rule *models.ForwardRule, msg Message) {
	if !pipeline.AllowsKind(rule, msg.Kind) {
		return
	}
	if !pipeline.InTimeWindow(rule, msg.Date) {
		return
	}

	var keywords []models.Keyword
	if rule.EnableKeywordFilter {
		keywords = rule.Keywords
	}
	var replaceRules []models.ReplaceRule
	if rule.EnableRegexReplace {
		replaceRules = rule.ReplaceRules
	}
	text, ok := pipeline.ProcessMessage(msg.Text, keywords, replaceRules)
	if !ok {
		return
	}
	text = pipeline.Truncate(text, rule.MaxMessageLength)

	if rule.ForwardDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(rule.ForwardDelay) * time.Second):
		}
	}

	entry := models.MessageLog{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		SourceMessageID: msg.ID,
		SourceChatID:    msg.ChatID,
		SourceChatName:  rule.SourceChatName,
		TargetChatID:    rule.TargetChatID,
		TargetChatName:  rule.TargetChatName,
		OriginalText:    msg.Text,
		ProcessedText:   text,
		MediaType:       msg.Kind.String(),
	}

	sendStart := time.Now()
	targetID, err := w.transport.Send(ctx, SendRequest{
		ChatID:         rule.TargetChatID,
		Text:           text,
		DisablePreview: !rule.EnableLinkPreview,
		Media:          msg.Media,
	})
	entry.ProcessingTime = time.Since(sendStart).Milliseconds()
	if err != nil {
		entry.Status = models.StatusFailed
		entry.ErrorMessage = err.Error()
		log.Printf("relay[%s]: rule %q: send to %s: %v", w.clientID, rule.Name, rule.TargetChatID, err)
	} else {
		entry.Status = models.StatusSuccess
		entry.TargetMessageID = targetID
	}
	if err := store.Append(w.gdb, &entry); err != nil {
		log.Printf("relay[%s]: rule %q: %v", w.clientID, rule.Name, err)
	}
}
