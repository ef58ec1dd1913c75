// Package notify implements the user-facing message queue: one visible slot
// plus a bounded backlog of preempted messages that resurface once the
// current message expires. It does no I/O and cannot fail.
package notify

import "time"

// Kind selects the visual treatment of a message
type Kind uint8

const (
	KindInfo Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "info"
}

// Priority determines how long a message stays visible
type Priority uint8

const (
	PriorityNormal Priority = iota
	PriorityCritical
)

const (
	normalDuration   = 3 * time.Second
	criticalDuration = 8 * time.Second

	// Extra time the presentation layer uses for the fade-out animation;
	// a message only counts as expired once the fade has finished too
	fadeTail = 2100 * time.Millisecond

	maxBacklog = 10
)

// Message is immutable once created
type Message struct {
	Content   string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration
}

// NewMessage creates a message with the display duration implied by its
// priority
func NewMessage(content string, kind Kind, priority Priority) Message {
	duration := normalDuration
	if priority == PriorityCritical {
		duration = criticalDuration
	}

	return Message{
		Content:   content,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  duration,
	}
}

// Info creates a normal-priority informational message
func Info(content string) Message {
	return NewMessage(content, KindInfo, PriorityNormal)
}

// Error creates a critical error message
func Error(content string) Message {
	return NewMessage(content, KindError, PriorityCritical)
}

// Age returns how long ago the message was created
func (m Message) Age() time.Duration {
	return time.Since(m.CreatedAt)
}

// ShouldFade reports whether the fade-out animation should have started
func (m Message) ShouldFade() bool {
	return m.Age() > m.Duration
}

// Expired reports whether the message is done, fade included
func (m Message) Expired() bool {
	return m.Age() > m.Duration+fadeTail
}

// Center owns the current message slot and the backlog. It is written only
// by the scheduler thread.
type Center struct {
	current *Message
	backlog []Message
}

func NewCenter() *Center {
	return &Center{}
}

// Post displays a message immediately, preempting whatever is shown. The
// preempted message is preserved in the backlog only if it had not yet begun
// fading and is not expired.
func (c *Center) Post(m Message) {
	if c.current != nil && !c.current.ShouldFade() && !c.current.Expired() {
		c.backlog = append(c.backlog, *c.current)
	}

	c.current = &m
	c.trimBacklog()
}

// Current returns the active message, or nil if none is active. Expired
// messages are treated as absent; Tick handles their removal.
func (c *Center) Current() *Message {
	if c.current == nil || c.current.Expired() {
		return nil
	}

	return c.current
}

// Pending returns the number of backlogged messages
func (c *Center) Pending() int {
	return len(c.backlog)
}

// Tick must be called once per scheduler cycle. It clears an expired current
// message and promotes the most recently displaced backlog entry that has
// not expired, discarding expired entries along the way.
func (c *Center) Tick() {
	if c.current != nil {
		if !c.current.Expired() {
			return
		}
		c.current = nil
	}

	c.promote()
}

// promote resurfaces backlog entries last-in-first-served
func (c *Center) promote() {
	for len(c.backlog) > 0 {
		next := c.backlog[len(c.backlog)-1]
		c.backlog = c.backlog[:len(c.backlog)-1]

		if !next.Expired() {
			c.current = &next
			return
		}
	}
}

// trimBacklog drops expired entries and, when over capacity, the oldest ones
func (c *Center) trimBacklog() {
	kept := c.backlog[:0]
	for _, m := range c.backlog {
		if !m.Expired() {
			kept = append(kept, m)
		}
	}
	c.backlog = kept

	if len(c.backlog) > maxBacklog {
		c.backlog = append(c.backlog[:0], c.backlog[len(c.backlog)-maxBacklog:]...)
	}
}
