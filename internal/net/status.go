package net

import (
	"context"
	"sync"
	"time"

	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/notify"
)

const (
	MsgOnline  = "Network connection restored"
	MsgOffline = "Network connection lost"
)

type Notifier interface {
	Notify(message string, severity notify.Severity)
}

// StatusMonitor polls connectivity and notifies on online/offline
// transitions. The first observation only sets the baseline.
type StatusMonitor struct {
	reach    func() bool
	interval time.Duration
	notifier Notifier
	log      logger.Logger

	mu     sync.Mutex
	known  bool
	online bool
}

func NewStatusMonitor(reach func() bool, interval time.Duration, n Notifier, log logger.Logger) *StatusMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StatusMonitor{reach: reach, interval: interval, notifier: n, log: log}
}

// Run checks connectivity every interval until ctx is done.
func (m *StatusMonitor) Run(ctx context.Context) {
	m.Check()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check tests reachability once and reports whether the host is online.
func (m *StatusMonitor) Check() bool {
	online := m.reach()

	m.mu.Lock()
	changed := m.known && online != m.online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if !changed {
		return online
	}
	if online {
		m.log.Info("[NET] Back online")
		m.notifier.Notify(MsgOnline, notify.Success)
	} else {
		m.log.Warn("[NET] Went offline")
		m.notifier.Notify(MsgOffline, notify.Warning)
	}
	return online
}
