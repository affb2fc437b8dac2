package relay

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/models"
)

// TransportFactory builds a Transport for one configured client. The
// production factory wires up an MTProto client; tests inject mocks.
type TransportFactory func(cc config.ClientConfig) (Transport, error)

// SupervisorOpts holds parameters for creating a Supervisor.
type SupervisorOpts struct {
	DB        *gorm.DB
	Factory   TransportFactory
	Observers []StatusObserver
}

// Supervisor owns the set of session workers. All additions and removals go
// through it; workers are keyed by client ID.
type Supervisor struct {
	gdb       *gorm.DB
	factory   TransportFactory
	observers []StatusObserver

	mu      sync.Mutex
	workers map[string]*Worker
}

// NewSupervisor validates opts and returns an empty Supervisor.
func NewSupervisor(opts SupervisorOpts) (*Supervisor, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("relay: db is required")
	}
	if opts.Factory == nil {
		return nil, fmt.Errorf("relay: transport factory is required")
	}
	return &Supervisor{
		gdb:       opts.DB,
		factory:   opts.Factory,
		observers: opts.Observers,
		workers:   make(map[string]*Worker),
	}, nil
}

// AddClient registers a worker for the given client config. Adding an
// already-registered ID is a no-op.
func (s *Supervisor) AddClient(cc config.ClientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[cc.ID]; ok {
		return nil
	}
	transport, err := s.factory(cc)
	if err != nil {
		return fmt.Errorf("relay: build transport for %q: %w", cc.ID, err)
	}
	worker, err := NewWorker(WorkerOpts{
		ClientID:  cc.ID,
		Kind:      cc.Kind,
		DB:        s.gdb,
		Transport: transport,
		Observers: s.observers,
	})
	if err != nil {
		return err
	}
	s.workers[cc.ID] = worker
	return nil
}

// RemoveClient stops and deletes a worker.
func (s *Supervisor) RemoveClient(clientID string) error {
	s.mu.Lock()
	worker, ok := s.workers[clientID]
	if ok {
		delete(s.workers, clientID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("relay: unknown client %q", clientID)
	}
	return worker.Stop()
}

// StartClient starts one worker's session.
func (s *Supervisor) StartClient(clientID string) error {
	worker, err := s.Worker(clientID)
	if err != nil {
		return err
	}
	return worker.Start()
}

// StopClient stops one worker's session without removing it.
func (s *Supervisor) StopClient(clientID string) error {
	worker, err := s.Worker(clientID)
	if err != nil {
		return err
	}
	return worker.Stop()
}

// Worker returns the worker registered under clientID.
func (s *Supervisor) Worker(clientID string) (*Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	worker, ok := s.workers[clientID]
	if !ok {
		return nil, fmt.Errorf("relay: unknown client %q", clientID)
	}
	return worker, nil
}

// AllStatus returns a point-in-time snapshot of every worker.
func (s *Supervisor) AllStatus() []Status {
	s.mu.Lock()
	workers := make([]*Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	statuses := make([]Status, 0, len(workers))
	for _, w := range workers {
		statuses = append(statuses, w.Status())
	}
	return statuses
}

// StopAll stops every worker. Errors are logged, not returned; shutdown
// keeps going.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	workers := make([]*Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	for _, w := range workers {
		if err := w.Stop(); err != nil {
			log.Printf("relay: stop %s: %v", w.ClientID(), err)
		}
	}
}

// RefreshMonitoredChats recomputes every connected worker's monitored set.
// Called after rule changes.
func (s *Supervisor) RefreshMonitoredChats() {
	s.mu.Lock()
	workers := make([]*Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	for _, w := range workers {
		if !w.Connected() {
			continue
		}
		if err := w.RefreshMonitoredChats(); err != nil {
			log.Printf("relay: %v", err)
		}
	}
}

// ProcessHistoryMessages submits a historical replay for one rule into the
// owning worker's session, falling back to the first connected worker when
// the rule's owner is absent or offline. The replay runs asynchronously;
// the call returns as soon as the task is queued.
func (s *Supervisor) ProcessHistoryMessages(rule *models.ForwardRule) error {
	worker := s.replayWorker(rule.ClientID)
	if worker == nil {
		return fmt.Errorf("relay: no connected client to replay rule %q", rule.Name)
	}

	gdb := s.gdb
	return worker.Submit(func(ctx context.Context) {
		res := Replay(ctx, gdb, worker.transport, rule)
		log.Printf("relay[%s]: replay rule %q: fetched=%d forwarded=%d skipped=%d errors=%d",
			worker.ClientID(), rule.Name, res.Fetched, res.Forwarded, res.Skipped, res.Errors)
	})
}

// replayWorker picks the rule's owning worker when connected, otherwise the
// first connected worker in ID order.
func (s *Supervisor) replayWorker(ownerID string) *Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.workers[ownerID]; ok && owner.Connected() {
		return owner
	}
	var fallback *Worker
	for _, w := range s.workers {
		if !w.Connected() {
			continue
		}
		if fallback == nil || w.ClientID() < fallback.ClientID() {
			fallback = w
		}
	}
	return fallback
}
