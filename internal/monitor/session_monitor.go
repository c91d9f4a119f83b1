package monitor

import (
	"context"
	"log"
	"time"

	"github.com/axellelanca/visitorpulse/internal/repository"
)

// SessionMonitor periodically deactivates sessions that stopped sending heartbeats.
// It is the only component that ever sets a session inactive.
type SessionMonitor struct {
	sessionRepo repository.SessionRepository // Repository used to expire stale sessions
	timeout     time.Duration                // Inactivity after which a session expires
	interval    time.Duration                // How often Start scans for stale sessions
	now         func() time.Time
}

// DefaultInterval replaces a non-positive scan interval in Start.
const DefaultInterval = time.Minute

// NewSessionMonitor creates and returns a new instance of SessionMonitor.
// interval is only read by Start; callers that run single passes through
// ExpireSessions may pass 0.
func NewSessionMonitor(sessionRepo repository.SessionRepository, timeout, interval time.Duration) *SessionMonitor {
	return &SessionMonitor{
		sessionRepo: sessionRepo,
		timeout:     timeout,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start runs an immediate expiry pass, then one every interval, until ctx is cancelled.
// A non-positive interval falls back to DefaultInterval.
func (m *SessionMonitor) Start(ctx context.Context) {
	interval := m.interval
	if interval <= 0 {
		log.Printf("[MONITOR] Invalid interval %v, using %v", interval, DefaultInterval)
		interval = DefaultInterval
	}
	log.Printf("[MONITOR] Starting session monitor: timeout %v, interval %v", m.timeout, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.ExpireSessions()

	for {
		select {
		case <-ctx.Done():
			log.Println("[MONITOR] Session monitor stopped.")
			return
		case <-ticker.C:
			m.ExpireSessions()
		}
	}
}

// ExpireSessions deactivates every active session whose last heartbeat is older than the timeout.
// Returns the number of sessions expired; storage errors are logged and count as zero.
func (m *SessionMonitor) ExpireSessions() int64 {
	cutoff := m.now().Add(-m.timeout)

	expired, err := m.sessionRepo.DeactivateStaleSessions(cutoff)
	if err != nil {
		log.Printf("[MONITOR] ERROR expiring sessions: %v", err)
		return 0
	}
	if expired > 0 {
		log.Printf("[MONITOR] %d session(s) expired (no heartbeat since %s).", expired, cutoff.Format(time.RFC3339))
	}
	return expired
}
