package core

import (
	"PayLedger/internal/event"
)

// Router partitions the input stream across worker inboxes by client id.
// Routing is pure on the client id, which every event kind carries, so all
// events for one client land on one shard in input order. Inboxes are
// bounded: a full inbox blocks the reader (backpressure).
type Router struct {
	inboxes []chan event.Event
}

func NewRouter(shards, inboxSize int) *Router {
	inboxes := make([]chan event.Event, shards)
	for i := range inboxes {
		inboxes[i] = make(chan event.Event, inboxSize)
	}
	return &Router{inboxes: inboxes}
}

func (r *Router) Shards() int {
	return len(r.inboxes)
}

// Route delivers the event to its shard, blocking when the worker falls
// behind.
func (r *Router) Route(evt event.Event) {
	r.inboxes[int(evt.ClientID())%len(r.inboxes)] <- evt
}

// Inbox returns the receive side of one shard's inbox.
func (r *Router) Inbox(shard int) <-chan event.Event {
	return r.inboxes[shard]
}

// Close signals every worker to finalize once its inbox drains.
func (r *Router) Close() {
	for _, inbox := range r.inboxes {
		close(inbox)
	}
}
