// Package sse implements a Server-Sent Events broker that tells connected
// clients about new clips and template changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Event types sent to clients.
const (
	EventClipCreated      = "clip.created"
	EventTemplateSaved    = "template.saved"
	EventTemplateDeleted  = "template.deleted"
	EventTemplatesSynced  = "templates.synced"
	EventTemplatesChanged = "templates.changed"
)

// Template event kinds accepted by PublishTemplateEvent.
const (
	KindSaved   = "saved"
	KindDeleted = "deleted"
	KindSynced  = "synced"
)

type templateEventReq struct {
	kind string
	ref  string
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + list throttle timestamp). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	listMin time.Duration

	subscribeCh     chan chan []byte
	unsubscribeCh   chan chan []byte
	publishCh       chan Event
	templateEventCh chan templateEventReq
	countReqCh      chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. listThrottle is the minimum interval
// between templates.changed events.
func NewBroker(listThrottle time.Duration) *Broker {
	if listThrottle <= 0 {
		listThrottle = 2 * time.Second
	}

	b := &Broker{
		listMin:         listThrottle,
		subscribeCh:     make(chan chan []byte),
		unsubscribeCh:   make(chan chan []byte),
		publishCh:       make(chan Event, 256),
		templateEventCh: make(chan templateEventReq, 256),
		countReqCh:      make(chan chan int),
		stopCh:          make(chan struct{}),
		stopped:         make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastList time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.templateEventCh:
			switch req.kind {
			case KindSaved:
				broadcast(Event{Type: EventTemplateSaved, Data: map[string]string{"id": req.ref}})
			case KindDeleted:
				broadcast(Event{Type: EventTemplateDeleted, Data: map[string]string{"id": req.ref}})
			case KindSynced:
				broadcast(Event{Type: EventTemplatesSynced, Data: map[string]string{"path": req.ref}})
			default:
				continue
			}

			now := time.Now()
			if now.Sub(lastList) >= b.listMin {
				lastList = now
				broadcast(Event{Type: EventTemplatesChanged, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishTemplateEvent publishes a template change and a throttled
// templates.changed event. ref is the template id, or the source file path
// for KindSynced.
func (b *Broker) PublishTemplateEvent(kind, ref string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.templateEventCh <- templateEventReq{kind: kind, ref: ref}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
