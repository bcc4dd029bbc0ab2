package models

import (
	"sync"
	"time"
)

type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent tells list views that a record was written or has disappeared.
type ChangeEvent struct {
	Entity string     `json:"entity"`
	Id     int        `json:"id"`
	Kind   ChangeKind `json:"kind"`
	At     time.Time  `json:"at"`
}

type ChangeListener func(ChangeEvent)

// Notifier fans change events out to registered listeners, synchronously and in registration order.
type Notifier struct {
	mu        sync.RWMutex
	nextId    int
	listeners map[int]ChangeListener
	order     []int
}

func NewNotifier() *Notifier {
	return &Notifier{listeners: map[int]ChangeListener{}}
}

// Changes receives an event after every committed save or delete.
var Changes = NewNotifier()

// Subscribe registers fn and returns a function that removes it again.
func (n *Notifier) Subscribe(fn ChangeListener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextId++
	id := n.nextId
	n.listeners[id] = fn
	n.order = append(n.order, id)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
		for i, v := range n.order {
			if v == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

func (n *Notifier) Publish(ev ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	n.mu.RLock()
	listeners := make([]ChangeListener, 0, len(n.order))
	for _, id := range n.order {
		listeners = append(listeners, n.listeners[id])
	}
	n.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func publishSaved(entity string, id int) {
	Changes.Publish(ChangeEvent{Entity: entity, Id: id, Kind: ChangeSaved})
}

func publishDeleted(entity string, id int) {
	Changes.Publish(ChangeEvent{Entity: entity, Id: id, Kind: ChangeDeleted})
}
