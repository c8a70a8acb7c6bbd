package application

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies a user-facing notice.
type NotificationKind string

const (
	NoticeSuccess NotificationKind = "success"
	NoticeInfo    NotificationKind = "info"
	NoticeError   NotificationKind = "error"
)

// Notification is a dismissable, auto-expiring user notice. Failures never
// propagate past the boundary that produced them; they end up here instead.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// DefaultNotificationTTL mirrors the auto-hide delay of the original shell.
const DefaultNotificationTTL = 3 * time.Second

// Notifier collects notifications and expires them on read.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries []Notification
}

// NewNotifier creates a notifier with the default TTL.
func NewNotifier() *Notifier {
	return &Notifier{ttl: DefaultNotificationTTL, now: time.Now}
}

// NewNotifierWithTTL creates a notifier with a custom TTL and clock.
func NewNotifierWithTTL(ttl time.Duration, now func() time.Time) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{ttl: ttl, now: now}
}

// Notify records a notice.
func (n *Notifier) Notify(kind NotificationKind, message string) Notification {
	notice := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: n.now(),
	}
	n.mu.Lock()
	n.entries = append(n.entries, notice)
	n.mu.Unlock()
	return notice
}

// Active returns the not-yet-expired notifications, pruning the rest.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := n.now().Add(-n.ttl)
	kept := n.entries[:0]
	for _, e := range n.entries {
		if e.CreatedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	n.entries = kept
	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a notification by id before it expires.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.entries[:0]
	for _, e := range n.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	n.entries = kept
}
