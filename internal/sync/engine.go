package sync

import (
	"errors"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"github.com/jeotronix/fieldops/internal/blob"
	"github.com/jeotronix/fieldops/internal/config"
	"github.com/jeotronix/fieldops/internal/remote"
)

// Engine orchestrates push and pull against the remote store. At most one
// cycle runs at a time; requests arriving mid-cycle coalesce into a single
// follow-up run.
type Engine struct {
	mu stdsync.RWMutex

	store      LocalStore
	remote     RemoteStore
	drainer    *drainer
	puller     *puller
	connection *ConnectionManager
	interval   time.Duration

	// State
	isRunning      bool
	syncInProgress bool
	authenticated  bool
	lastSync       *time.Time
	lastError      string

	subscribers []func(Status)

	stopChan chan struct{}
	syncChan chan struct{}
}

// NewEngine wires the engine from its parts
func NewEngine(st LocalStore, rs RemoteStore, bf blob.Fetcher, cfg config.SyncConfig, remoteURL string) *Engine {
	return &Engine{
		store:  st,
		remote: rs,
		drainer: &drainer{
			store:              st,
			remote:             rs,
			maxRejectedRetries: cfg.MaxRejectedRetries,
		},
		puller: newPuller(st, rs, bf,
			cfg.PullPageSize, cfg.PullMaxPages,
			time.Duration(cfg.CursorSkewSeconds)*time.Second,
			cfg.AttachmentMaxBytes),
		connection: NewConnectionManager(remoteURL, time.Duration(cfg.HealthIntervalSecs)*time.Second),
		interval:   time.Duration(cfg.IntervalSeconds) * time.Second,
		stopChan:   make(chan struct{}),
		syncChan:   make(chan struct{}, 1),
	}
}

// Start launches the worker, the periodic trigger and the connectivity
// probe. An initial sync is requested immediately.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return fmt.Errorf("sync engine already running")
	}
	e.isRunning = true
	e.mu.Unlock()

	log.Println("🔄 Sync Engine starting...")

	e.connection.OnReconnect(e.RequestSync)
	e.connection.Start()

	go e.worker()
	go e.tickerLoop()

	e.RequestSync()
	log.Println("✅ Sync Engine started")
	return nil
}

// Stop shuts down background work. A cycle in flight finishes.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = false
	e.mu.Unlock()

	log.Println("🛑 Stopping Sync Engine...")
	close(e.stopChan)
	e.connection.Stop()
	log.Println("✅ Sync Engine stopped")
}

// RequestSync asks for a cycle as soon as possible. Safe from any
// goroutine; concurrent requests coalesce.
func (e *Engine) RequestSync() {
	select {
	case e.syncChan <- struct{}{}:
	default:
	}
}

// NotifyQueued is called after a local mutation was enqueued: refresh the
// published counts and kick a cycle.
func (e *Engine) NotifyQueued() {
	e.broadcast()
	e.RequestSync()
}

// Subscribe registers a status listener. Listeners are invoked from the
// engine's goroutines and must not block.
func (e *Engine) Subscribe(fn func(Status)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Status reports the current sync state with live queue counts
func (e *Engine) Status() Status {
	e.mu.RLock()
	syncing := e.syncInProgress
	lastSync := e.lastSync
	e.mu.RUnlock()

	pending, err := e.store.PendingQueueCount()
	if err != nil {
		log.Printf("⚠️ Could not count pending queue items: %v", err)
	}
	dead, err := e.store.DeadQueueCount()
	if err != nil {
		log.Printf("⚠️ Could not count dead queue items: %v", err)
	}

	return Status{
		Online:       e.connection.IsOnline(),
		Syncing:      syncing,
		PendingCount: pending,
		DeadCount:    dead,
		LastSync:     lastSync,
	}
}

func (e *Engine) broadcast() {
	status := e.Status()
	e.mu.RLock()
	subs := e.subscribers
	e.mu.RUnlock()
	for _, fn := range subs {
		fn(status)
	}
}

// worker serializes cycles: one at a time, in request order
func (e *Engine) worker() {
	for {
		select {
		case <-e.syncChan:
			e.runCycle()
		case <-e.stopChan:
			return
		}
	}
}

// tickerLoop requests a periodic cycle while the remote is reachable
func (e *Engine) tickerLoop() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Pull even when nothing is queued so remote edits arrive
			if e.connection.IsOnline() {
				e.RequestSync()
			}
		case <-e.stopChan:
			return
		}
	}
}

// runCycle performs one pull-then-push pass. Failures are recorded and
// logged, never fatal: the next trigger simply tries again.
func (e *Engine) runCycle() {
	if !e.connection.IsOnline() && !e.connection.Check() {
		return
	}

	e.mu.Lock()
	e.syncInProgress = true
	e.mu.Unlock()
	e.broadcast()

	err := e.cycle()

	e.mu.Lock()
	e.syncInProgress = false
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
		now := time.Now()
		e.lastSync = &now
	}
	e.mu.Unlock()

	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			e.connection.MarkOffline()
		}
		log.Printf("⚠️ Sync did not fully complete: %v", err)
	} else {
		log.Println("✅ Sync cycle complete")
	}
	e.broadcast()
}

func (e *Engine) cycle() error {
	if err := e.ensureAuthenticated(); err != nil {
		return err
	}
	if err := e.puller.pullAll(); err != nil {
		return err
	}
	return e.drainer.drain()
}

// ensureAuthenticated performs the remote login once per process; a failed
// login is retried on the next cycle.
func (e *Engine) ensureAuthenticated() error {
	e.mu.RLock()
	done := e.authenticated
	e.mu.RUnlock()
	if done {
		return nil
	}

	uid, err := e.remote.Authenticate()
	if err != nil {
		return fmt.Errorf("remote authentication: %w", err)
	}

	e.mu.Lock()
	e.authenticated = true
	e.mu.Unlock()
	log.Printf("✅ Authenticated against remote store (uid %d)", uid)
	return nil
}
