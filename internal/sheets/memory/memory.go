// Package memory is an in-process spreadsheet used when no Google sheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ports "smartfinance/internal/sheets"
)

var (
	_ ports.TableWriter = (*Store)(nil)
	_ ports.TableReader = (*Store)(nil)
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]any
}

func New() *Store {
	return &Store{sheets: map[string][][]any{}}
}

// WriteTable replaces the sheet and returns a synthetic range reference.
func (s *Store) WriteTable(_ context.Context, name string, rows [][]any) (string, error) {
	cp := make([][]any, len(rows))
	for i, row := range rows {
		cp[i] = append([]any(nil), row...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[name] = cp
	return fmt.Sprintf("mem:%s!A1:%d", name, len(rows)), nil
}

// ReadTable returns a copy of the sheet.
func (s *Store) ReadTable(_ context.Context, name string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

// Sheets lists the sheet names, sorted.
func (s *Store) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sheets))
	for name := range s.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
