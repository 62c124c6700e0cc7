package sync

import (
	"log"
	"net/http"
	"sync"
	"time"
)

// probeFunc reports whether the remote store is reachable right now
type probeFunc func() bool

// ConnectionManager tracks reachability of the remote store. It probes the
// health endpoint on an interval and fires callbacks on the offline→online
// transition so the engine can drain the queue the moment the network comes
// back.
type ConnectionManager struct {
	mu sync.RWMutex

	probe    probeFunc
	interval time.Duration

	isOnline bool
	checked  bool // first probe has run

	onReconnect []func()

	running  bool
	stopChan chan struct{}

	lastSuccess *time.Time
	lastFailure *time.Time
	failStreak  int
}

// NewConnectionManager probes remoteURL's health endpoint on the given
// interval.
func NewConnectionManager(remoteURL string, interval time.Duration) *ConnectionManager {
	client := &http.Client{Timeout: 10 * time.Second}
	return &ConnectionManager{
		probe:    func() bool { return probeHealth(client, remoteURL) },
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// newConnectionManagerWithProbe is the test seam
func newConnectionManagerWithProbe(probe probeFunc, interval time.Duration) *ConnectionManager {
	return &ConnectionManager{
		probe:    probe,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func probeHealth(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// OnReconnect registers a callback fired whenever connectivity returns.
// Register before Start.
func (cm *ConnectionManager) OnReconnect(fn func()) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onReconnect = append(cm.onReconnect, fn)
}

// Start probes once immediately, then keeps probing in the background
func (cm *ConnectionManager) Start() {
	cm.mu.Lock()
	if cm.running {
		cm.mu.Unlock()
		return
	}
	cm.running = true
	cm.mu.Unlock()

	cm.Check()
	go cm.loop()
}

// Stop ends background probing
func (cm *ConnectionManager) Stop() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if !cm.running {
		return
	}
	cm.running = false
	close(cm.stopChan)
}

// IsOnline returns the last observed reachability
func (cm *ConnectionManager) IsOnline() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.isOnline
}

// Check probes immediately and updates state. Returns the fresh result.
func (cm *ConnectionManager) Check() bool {
	online := cm.probe()

	cm.mu.Lock()
	wasOnline := cm.isOnline
	first := !cm.checked
	cm.checked = true
	cm.isOnline = online
	now := time.Now()
	if online {
		cm.lastSuccess = &now
		cm.failStreak = 0
	} else {
		cm.lastFailure = &now
		cm.failStreak++
	}
	callbacks := cm.onReconnect
	cm.mu.Unlock()

	if online && (!wasOnline || first) {
		if !first {
			log.Printf("✅ Remote store reachable again")
		}
		for _, fn := range callbacks {
			fn()
		}
	}
	if !online && (wasOnline || first) {
		log.Printf("⚠️ Remote store unreachable, operating offline")
	}
	return online
}

// MarkOffline records an observed failure from a live call, without waiting
// for the next probe tick.
func (cm *ConnectionManager) MarkOffline() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.isOnline {
		log.Printf("⚠️ Remote store unreachable, operating offline")
	}
	cm.checked = true
	cm.isOnline = false
	now := time.Now()
	cm.lastFailure = &now
	cm.failStreak++
}

func (cm *ConnectionManager) loop() {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.Check()
		case <-cm.stopChan:
			return
		}
	}
}
