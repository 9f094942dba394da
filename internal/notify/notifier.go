// Package notify shows transient success and error banners that dismiss
// themselves after a per-call delay.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is the banner currently on screen.
type Notice struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	ShownAt time.Time `json:"shownAt"`
}

// Notifier holds at most one notice. Show replaces the current notice and
// restarts its timer. After Close every timer is stopped and late timer
// callbacks do nothing.
type Notifier struct {
	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	seq     uint64
	closed  bool
	nowFunc func() time.Time
}

func New() *Notifier { return &Notifier{nowFunc: time.Now} }

// Show displays msg. A zero or negative dismissAfter keeps it until the next
// Show or Dismiss.
func (n *Notifier) Show(kind Kind, msg string, dismissAfter time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.stopLocked()
	n.seq++
	n.current = &Notice{Kind: kind, Message: msg, ShownAt: n.nowFunc()}
	if dismissAfter <= 0 {
		return
	}
	seq := n.seq
	n.timer = time.AfterFunc(dismissAfter, func() { n.expire(seq) })
}

func (n *Notifier) Success(msg string, dismissAfter time.Duration) {
	n.Show(KindSuccess, msg, dismissAfter)
}

func (n *Notifier) Error(msg string) { n.Show(KindError, msg, 0) }

// expire clears the notice only if it is still the one the timer was set for.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || seq != n.seq {
		return
	}
	n.current = nil
	n.timer = nil
}

func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.seq++
	n.current = nil
}

// Current returns a copy of the visible notice, or nil.
func (n *Notifier) Current() *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

// Close stops pending timers. The notifier ignores every later call.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.closed = true
	n.current = nil
}

func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
