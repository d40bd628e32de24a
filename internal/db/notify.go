package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"arogya-intake/internal/logging"
)

// Notifier publishes "guide ready" events over Postgres LISTEN/NOTIFY so that
// a dashboard can pick up finished intakes without polling.
type Notifier struct {
	DB      *sql.DB
	URL     string
	Channel string
	// PingInterval is how often an idle listener checks its connection.
	PingInterval time.Duration
}

// NewNotifier constructs a new Notifier.  The channel should match the
// POSTGRES_NOTIFY_CHANNEL environment variable; dbURL is only needed for
// Listen.
func NewNotifier(db *sql.DB, dbURL, channel string) *Notifier {
	return &Notifier{DB: db, URL: dbURL, Channel: channel, PingInterval: 90 * time.Second}
}

// GuideReady sends a notification carrying the session ID.
func (n *Notifier) GuideReady(ctx context.Context, sessionID string) error {
	channel := pq.QuoteIdentifier(n.Channel)
	if _, err := n.DB.ExecContext(ctx, fmt.Sprintf("NOTIFY %s, %s", channel, pq.QuoteLiteral(sessionID))); err != nil {
		return fmt.Errorf("notify %s: %w", n.Channel, err)
	}
	return nil
}

// Listen delivers the session IDs published on the channel until ctx is
// cancelled.  The listener reconnects on its own after connection loss.
func (n *Notifier) Listen(ctx context.Context) (<-chan string, error) {
	log := logging.FromContext(ctx).With("channel", n.Channel)
	l := pq.NewListener(n.URL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Error("notification listener event", "event", ev, "error", err)
		}
	})
	if err := l.Listen(n.Channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", n.Channel, err)
	}

	interval := n.PingInterval
	if interval <= 0 {
		interval = 90 * time.Second
	}
	ch := make(chan string)
	go func() {
		ticker := time.NewTicker(interval)
		defer func() {
			ticker.Stop()
			_ = l.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case note := <-l.Notify:
				// A nil notification follows a reconnect.
				if note == nil {
					continue
				}
				select {
				case ch <- note.Extra:
				case <-ctx.Done():
					return
				}
			case <-ticker.C:
				go func() { _ = l.Ping() }()
			}
		}
	}()
	return ch, nil
}
