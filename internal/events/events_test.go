package events

import (
	"testing"

	"smartfinance/internal/core"
)

func TestBusDeliversByName(t *testing.T) {
	var b Bus
	var got []Name

	b.Subscribe(TransactionAdded, func(e Event) { got = append(got, e.Name) })
	b.SubscribeAll(func(e Event) { got = append(got, "all:"+e.Name) })

	b.Publish(Event{Name: TransactionAdded})
	b.Publish(Event{Name: CategoryDeleted})

	want := []Name{TransactionAdded, "all:" + TransactionAdded, "all:" + CategoryDeleted}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	first := b.Subscribe(DataImported, func(Event) { calls++ })
	b.Subscribe(DataImported, func(Event) { calls += 10 })

	b.Unsubscribe(first)
	b.Unsubscribe(first)
	b.Publish(Event{Name: DataImported})

	if calls != 10 {
		t.Fatalf("expected only the second listener, got %d", calls)
	}
}

func TestBusListenerMayReenter(t *testing.T) {
	b := NewBus()
	nested := 0
	b.Subscribe(TransactionAdded, func(Event) {
		b.Subscribe(TransactionDeleted, func(Event) { nested++ })
		b.Publish(Event{Name: TransactionDeleted})
	})
	b.Publish(Event{Name: TransactionAdded})
	if nested != 1 {
		t.Fatalf("expected nested delivery, got %d", nested)
	}
}

func TestEventRecordID(t *testing.T) {
	if id := (Event{Transaction: &core.Transaction{ID: "txn_1"}}).RecordID(); id != "txn_1" {
		t.Fatalf("unexpected id %q", id)
	}
	if id := (Event{Category: &core.Category{ID: "cat_1"}}).RecordID(); id != "cat_1" {
		t.Fatalf("unexpected id %q", id)
	}
	if id := (Event{}).RecordID(); id != "" {
		t.Fatalf("unexpected id %q", id)
	}
}
