// Package events is the in-process change feed of a record store.
package events

import (
	"sync"
	"time"

	"smartfinance/internal/core"
)

// Name identifies the kind of change.
type Name string

const (
	TransactionAdded   Name = "transaction-added"
	TransactionUpdated Name = "transaction-updated"
	TransactionDeleted Name = "transaction-deleted"
	CategoryAdded      Name = "category-added"
	CategoryUpdated    Name = "category-updated"
	CategoryDeleted    Name = "category-deleted"
	DataImported       Name = "data-imported"
	SettingsUpdated    Name = "settings-updated"
)

// ImportStats summarizes an import.
type ImportStats struct {
	Transactions int    `json:"transactions"`
	Categories   int    `json:"categories"`
	Budgets      int    `json:"budgets"`
	BackupKey    string `json:"backupKey"`
}

// Event carries the record that resulted from a change. Exactly one of the
// payload fields is set, matching Name.
type Event struct {
	Name        Name              `json:"event"`
	UserID      string            `json:"userId"`
	At          time.Time         `json:"at"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Category    *core.Category    `json:"category,omitempty"`
	Settings    *core.Settings    `json:"settings,omitempty"`
	Import      *ImportStats      `json:"import,omitempty"`
}

// RecordID returns the id of the changed record, if the event has one.
func (e Event) RecordID() string {
	switch {
	case e.Transaction != nil:
		return e.Transaction.ID
	case e.Category != nil:
		return e.Category.ID
	}
	return ""
}

// Listener receives events synchronously on the publishing goroutine.
type Listener func(Event)

// Subscription identifies a registered listener.
type Subscription struct {
	name Name
	id   uint64
}

const anyName Name = "*"

type entry struct {
	id uint64
	fn Listener
}

// Bus is a registry of listeners keyed by event name. The zero value is
// ready to use.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[Name][]entry
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events called name.
func (b *Bus) Subscribe(name Name, fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[Name][]entry)
	}
	b.nextID++
	b.listeners[name] = append(b.listeners[name], entry{id: b.nextID, fn: fn})
	return Subscription{name: name, id: b.nextID}
}

// SubscribeAll registers fn for every event.
func (b *Bus) SubscribeAll(fn Listener) Subscription {
	return b.Subscribe(anyName, fn)
}

// Unsubscribe removes the listener behind sub. Unknown subscriptions are
// ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.listeners[sub.name]
	for i, e := range list {
		if e.id == sub.id {
			b.listeners[sub.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish calls every listener for e.Name, then every catch-all listener,
// each in registration order. Listeners may subscribe or publish themselves.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	targets := make([]Listener, 0, len(b.listeners[e.Name])+len(b.listeners[anyName]))
	for _, l := range b.listeners[e.Name] {
		targets = append(targets, l.fn)
	}
	for _, l := range b.listeners[anyName] {
		targets = append(targets, l.fn)
	}
	b.mu.Unlock()

	for _, fn := range targets {
		fn(e)
	}
}
