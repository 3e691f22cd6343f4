package memory

import (
	"context"
	"testing"
)

func TestMemoryStoreWriteAndRead(t *testing.T) {
	s := New()
	rows := [][]any{{"ID", "Name"}, {"1", "a"}}

	ref, err := s.WriteTable(context.Background(), "2025 Transactions", rows)
	if err != nil || ref != "mem:2025 Transactions!A1:2" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}

	rows[1][1] = "mutated"
	got, err := s.ReadTable(context.Background(), "2025 Transactions")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(got) != 2 || got[1][1] != "a" {
		t.Fatalf("unexpected rows: %v", got)
	}

	got[0][0] = "changed"
	again, _ := s.ReadTable(context.Background(), "2025 Transactions")
	if again[0][0] != "ID" {
		t.Fatalf("ReadTable must return a copy, got %v", again[0])
	}
}

func TestMemoryStoreMissingSheet(t *testing.T) {
	if _, err := New().ReadTable(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}

func TestMemoryStoreSheetsSorted(t *testing.T) {
	s := New()
	for _, name := range []string{"b", "a", "c"} {
		if _, err := s.WriteTable(context.Background(), name, nil); err != nil {
			t.Fatalf("WriteTable: %v", err)
		}
	}
	if got := s.Sheets(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected sheets: %v", got)
	}
}
