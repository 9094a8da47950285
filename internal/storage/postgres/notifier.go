package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lib/pq"

	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/storage/migrations"
)

// Notifier fans out LISTEN/NOTIFY signals from the votes trigger over a
// single dedicated connection.
type Notifier struct {
	listener *pq.Listener
	log      *log.Logger

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
	done   chan struct{}
}

// NewNotifier opens a listener on dsn and subscribes to the votes channel
func NewNotifier(dsn string) (*Notifier, error) {
	l := logger.Repository("vote_notifier")

	listener := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			l.Warn("listener connection problem", "event", ev, "error", err)
		case pq.ListenerEventReconnected:
			l.Info("listener reconnected")
		}
	})
	if err := listener.Listen(migrations.VotesChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", migrations.VotesChannel, err)
	}

	return &Notifier{
		listener: listener,
		log:      l,
		subs:     make(map[int]chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Run forwards notifications until ctx ends. A nil notification follows a
// reconnect, when events may have been missed, and is forwarded as well.
func (n *Notifier) Run(ctx context.Context) {
	defer close(n.done)
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case note, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			if note != nil {
				n.log.Debug("votes changed", "operation", note.Extra)
			}
			n.broadcast()
		case <-ping.C:
			if err := n.listener.Ping(); err != nil {
				n.log.Warn("listener ping failed", "error", err)
			}
		}
	}
}

// Subscribe registers a coalescing change channel, closed when ctx ends
func (n *Notifier) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-n.done:
		}
		n.mu.Lock()
		delete(n.subs, id)
		close(ch)
		n.mu.Unlock()
	}()

	return ch
}

// Close stops the listener connection
func (n *Notifier) Close() error {
	return n.listener.Close()
}

func (n *Notifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
