// Package dialog waits for one constrained reply from a specific person in a
// specific channel. The outcome is explicit: an answer or a timeout.
package dialog

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is an incoming chat message as seen by the dispatcher.
type Message struct {
	ChannelID string
	AuthorID  string
	Content   string
}

// Predicate decides whether a message content is an acceptable reply.
type Predicate func(content string) bool

// Prompt scopes a single wait.
type Prompt struct {
	ChannelID string
	UserID    string
	Accept    Predicate
	Timeout   time.Duration
	// Announce, when set, runs after the wait is registered and before
	// blocking.
	Announce func()
}

type Outcome int

const (
	Answered Outcome = iota + 1
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Answered:
		return "answered"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Reply is the result of Ask. Content is set only when Outcome is Answered.
type Reply struct {
	Outcome Outcome
	Content string
}

// Yes reports an answered "yes".
func (r Reply) Yes() bool {
	return r.Outcome == Answered && strings.EqualFold(strings.TrimSpace(r.Content), "yes")
}

// Choice returns the numeric answer of a Choice prompt, or 0.
func (r Reply) Choice() int {
	if r.Outcome != Answered {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.Content))
	if err != nil {
		return 0
	}
	return n
}

// Asker is implemented by Dispatcher; flows depend on it so tests can script replies.
type Asker interface {
	Ask(ctx context.Context, p Prompt) Reply
}

type waiter struct {
	prompt Prompt
	reply  chan string
}

// Dispatcher routes incoming messages to pending prompts.
type Dispatcher struct {
	mu      sync.Mutex
	waiters map[string]*waiter
	order   []string
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{waiters: make(map[string]*waiter)}
}

// Ask blocks until a matching message arrives, the timeout elapses or ctx is
// done. The last two both yield TimedOut.
func (d *Dispatcher) Ask(ctx context.Context, p Prompt) Reply {
	if p.Accept == nil {
		p.Accept = AnyText
	}
	id := uuid.NewString()
	w := &waiter{prompt: p, reply: make(chan string, 1)}

	d.mu.Lock()
	d.waiters[id] = w
	d.order = append(d.order, id)
	d.mu.Unlock()

	if p.Announce != nil {
		p.Announce()
	}

	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()

	select {
	case content := <-w.reply:
		return Reply{Outcome: Answered, Content: content}
	case <-timer.C:
	case <-ctx.Done():
	}

	// Once removed under the lock no Dispatch can pick this waiter, so a
	// reply either is already buffered or never arrives.
	d.remove(id)
	select {
	case content := <-w.reply:
		return Reply{Outcome: Answered, Content: content}
	default:
		return Reply{Outcome: TimedOut}
	}
}

// Dispatch hands msg to the oldest matching prompt. It returns true when the
// message was consumed and should not be treated as a command.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, id := range d.order {
		w := d.waiters[id]
		if w.prompt.UserID != msg.AuthorID || w.prompt.ChannelID != msg.ChannelID {
			continue
		}
		if !w.prompt.Accept(msg.Content) {
			continue
		}
		w.reply <- msg.Content
		delete(d.waiters, id)
		d.order = append(d.order[:i:i], d.order[i+1:]...)
		return true
	}
	return false
}

// Pending returns the number of prompts currently waiting.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

func (d *Dispatcher) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.waiters[id]; !ok {
		return
	}
	delete(d.waiters, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
}

// YesNo accepts "yes" or "no" in any case.
func YesNo(content string) bool {
	s := strings.ToLower(strings.TrimSpace(content))
	return s == "yes" || s == "no"
}

// Choice accepts an integer between 1 and n.
func Choice(n int) Predicate {
	return func(content string) bool {
		v, err := strconv.Atoi(strings.TrimSpace(content))
		return err == nil && v >= 1 && v <= n
	}
}

// AnyText accepts any non-empty message.
func AnyText(content string) bool {
	return strings.TrimSpace(content) != ""
}
