// ABOUTME: Fire-and-forget notification bus for versioning events
// ABOUTME: Buffered dispatch; events are dropped rather than blocking writers

package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind identifies a notification event type.
type Kind string

const (
	KindVersionCreated Kind = "versionCreated"
	KindBranchCreated  Kind = "branchCreated"
	KindVersionsMerged Kind = "versionsMerged"
)

// Event carries the identifiers a listener needs. Payloads are plain values
// so listeners never share mutable state with the stores.
type Event struct {
	Kind       Kind
	DocumentID string
	VersionID  string
	Version    string
	BranchID   string
	BranchName string
	// Merge events carry all three version strings.
	Merged string
	Source string
	Target string
	At     time.Time
}

// Listener receives events. Delivery is fire-and-forget: no acknowledgment,
// no retry, and a panicking listener does not affect other listeners.
type Listener interface {
	Name() string
	OnEvent(Event)
}

// DefaultBufferSize is the event buffer used when none is configured.
const DefaultBufferSize = 256

// Bus fans events out to listeners from a single dispatch goroutine.
// Publish never blocks: when the buffer is full the event is dropped and
// counted.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
	buffer    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closed    bool
	dropped   atomic.Uint64
}

// NewBus creates a bus and starts its dispatch goroutine.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	b := &Bus{
		buffer: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscribe registers a listener for all events.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.listeners = append(b.listeners, l)
}

// Publish enqueues an event without blocking. Events published after Close,
// or while the buffer is full, are dropped.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		b.dropped.Add(1)
		return
	}

	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	select {
	case b.buffer <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Dropped reports how many events were dropped since creation.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops dispatch after draining buffered events.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.buffer:
			b.deliver(ev)
		case <-b.done:
			// Drain what is already buffered, then stop.
			for {
				select {
				case ev := <-b.buffer:
					b.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(ev Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		safeDeliver(l, ev)
	}
}

func safeDeliver(l Listener, ev Event) {
	defer func() {
		recover() // a broken listener must not take down dispatch
	}()
	l.OnEvent(ev)
}
