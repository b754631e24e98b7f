package session

import (
	"time"
)

// Janitor periodically disposes idle sessions.
type Janitor struct {
	manager  *Manager
	ttl      time.Duration
	interval time.Duration
	onExpire func(*Session)

	stopChan chan struct{}
	done     chan struct{}
	ticker   *time.Ticker
}

// NewJanitor checks every interval. onExpire, if set, is called for each
// disposed session from the janitor goroutine.
func NewJanitor(m *Manager, ttl, interval time.Duration, onExpire func(*Session)) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		manager:  m,
		ttl:      ttl,
		interval: interval,
		onExpire: onExpire,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	if j == nil {
		return
	}
	j.ticker = time.NewTicker(j.interval)
	go j.loop()
}

// Stop ends the loop and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j == nil || j.ticker == nil {
		return
	}
	close(j.stopChan)
	j.ticker.Stop()
	<-j.done
}

func (j *Janitor) loop() {
	defer close(j.done)
	for {
		select {
		case <-j.ticker.C:
			j.sweep(j.manager.now())
		case <-j.stopChan:
			return
		}
	}
}

func (j *Janitor) sweep(now time.Time) {
	for _, s := range j.manager.Reap(now, j.ttl) {
		if j.onExpire != nil {
			j.onExpire(s)
		}
	}
}
