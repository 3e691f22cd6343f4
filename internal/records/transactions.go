package records

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/log"
	"smartfinance/internal/validation"
)

// NewTransaction is the caller supplied part of a transaction. Amount is
// coerced with core.ParseAmount and Description is sanitized; nothing else is
// checked here.
type NewTransaction struct {
	Description string               `json:"description" yaml:"description"`
	Amount      string               `json:"amount" yaml:"amount"`
	Category    string               `json:"category" yaml:"category"`
	Date        string               `json:"date" yaml:"date"`
	Type        core.TransactionType `json:"type" yaml:"type"`
	Notes       string               `json:"notes" yaml:"notes"`
}

// TransactionUpdate merges its non-nil fields over a stored transaction.
type TransactionUpdate struct {
	Description *string               `json:"description,omitempty"`
	Amount      *decimal.Decimal      `json:"amount,omitempty"`
	Category    *string               `json:"category,omitempty"`
	Date        *string               `json:"date,omitempty"`
	Type        *core.TransactionType `json:"type,omitempty"`
	Notes       *string               `json:"notes,omitempty"`
}

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Filters narrows GetTransactions. Zero fields do not filter.
type Filters struct {
	// DateRange keeps transactions dated within the named period.
	DateRange core.Period
	Category  string
	Type      core.TransactionType
	// Search is a case-insensitive regular expression matched against the
	// description, the notes and the amount. An invalid pattern is ignored.
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
}

// AddTransaction stores a new transaction at the head of the list.
func (s *Store) AddTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	if !s.Active() {
		s.dropped(ctx, "add transaction")
		return core.Transaction{}, nil
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if !in.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}

	now := s.now().UTC()
	t := core.Transaction{
		ID:          core.NewID("txn", now),
		Description: validation.SanitizeDescription(in.Description),
		Amount:      amount,
		Category:    in.Category,
		Date:        in.Date,
		Type:        in.Type,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	next := make([]core.Transaction, 0, len(s.transactions)+1)
	next = append(next, t)
	next = append(next, s.transactions...)
	if err := s.saveTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.transactions = next
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transaction added", log.NewFields().
		WithRecord(s.userID, log.FieldTransactionID, t.ID).
		WithOperation(log.OpCreate).ToSlice()...)
	s.emit(events.Event{Name: events.TransactionAdded, Transaction: &t})
	return t, nil
}

// UpdateTransaction merges u over the transaction with id and refreshes its
// UpdatedAt. The description is stored as given.
func (s *Store) UpdateTransaction(ctx context.Context, id string, u TransactionUpdate) (core.Transaction, error) {
	if !s.Active() {
		s.dropped(ctx, "update transaction")
		return core.Transaction{}, nil
	}
	if u.Amount != nil && u.Amount.IsNegative() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	if u.Type != nil && !u.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}

	s.mu.Lock()
	i := s.indexOfTransaction(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotFound
	}

	t := s.transactions[i]
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	t.UpdatedAt = s.now().UTC()

	next := append([]core.Transaction(nil), s.transactions...)
	next[i] = t
	if err := s.saveTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.transactions = next
	s.mu.Unlock()

	s.emit(events.Event{Name: events.TransactionUpdated, Transaction: &t})
	return t, nil
}

// DeleteTransaction removes the transaction with id and returns it.
func (s *Store) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	if !s.Active() {
		s.dropped(ctx, "delete transaction")
		return core.Transaction{}, nil
	}

	s.mu.Lock()
	i := s.indexOfTransaction(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotFound
	}
	removed := s.transactions[i]
	next := make([]core.Transaction, 0, len(s.transactions)-1)
	next = append(next, s.transactions[:i]...)
	next = append(next, s.transactions[i+1:]...)
	if err := s.saveTransactions(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.transactions = next
	s.mu.Unlock()

	s.emit(events.Event{Name: events.TransactionDeleted, Transaction: &removed})
	return removed, nil
}

// GetTransaction returns the transaction with id.
func (s *Store) GetTransaction(id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfTransaction(id)
	if i < 0 {
		return core.Transaction{}, ErrNotFound
	}
	return s.transactions[i], nil
}

func (s *Store) indexOfTransaction(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// GetTransactions applies f in this order: period, category, type, search,
// sort, limit. Without a sort the list stays most recent first.
func (s *Store) GetTransactions(ctx context.Context, f Filters) []core.Transaction {
	s.mu.RLock()
	out := append(make([]core.Transaction, 0, len(s.transactions)), s.transactions...)
	s.mu.RUnlock()

	if f.DateRange != "" {
		out = s.filterRange(out, f.DateRange.Range(s.Now()))
	}
	if f.Category != "" {
		out = keep(out, func(t core.Transaction) bool { return t.Category == f.Category })
	}
	if f.Type != "" {
		out = keep(out, func(t core.Transaction) bool { return t.Type == f.Type })
	}
	if f.Search != "" {
		re, err := regexp.Compile("(?i)" + f.Search)
		if err != nil {
			s.logger.WarnContext(ctx, "Invalid search pattern, ignoring", log.FieldPattern, f.Search, log.FieldError, err)
		} else {
			out = keep(out, func(t core.Transaction) bool {
				return re.MatchString(t.Description) || re.MatchString(t.Notes) || re.MatchString(t.Amount.String())
			})
		}
	}
	if f.SortBy != "" {
		sortTransactions(out, f.SortBy, strings.EqualFold(f.SortOrder, SortDesc))
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// filterRange keeps transactions whose date falls in r. Unparseable dates
// never match.
func (s *Store) filterRange(txns []core.Transaction, r core.DateRange) []core.Transaction {
	return keep(txns, func(t core.Transaction) bool {
		d, err := core.ParseDate(t.Date, s.loc)
		return err == nil && r.Contains(d)
	})
}

func keep(txns []core.Transaction, pred func(core.Transaction) bool) []core.Transaction {
	out := txns[:0]
	for _, t := range txns {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// sortTransactions orders txns by a single field. Unknown fields leave the
// order unchanged.
func sortTransactions(txns []core.Transaction, field string, desc bool) {
	var less func(a, b core.Transaction) bool
	switch field {
	case "date":
		less = func(a, b core.Transaction) bool { return a.Date < b.Date }
	case "amount":
		less = func(a, b core.Transaction) bool { return a.Amount.LessThan(b.Amount) }
	case "description":
		less = func(a, b core.Transaction) bool { return a.Description < b.Description }
	case "category":
		less = func(a, b core.Transaction) bool { return a.Category < b.Category }
	case "type":
		less = func(a, b core.Transaction) bool { return a.Type < b.Type }
	case "notes":
		less = func(a, b core.Transaction) bool { return a.Notes < b.Notes }
	case "id":
		less = func(a, b core.Transaction) bool { return a.ID < b.ID }
	case "createdAt":
		less = func(a, b core.Transaction) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updatedAt":
		less = func(a, b core.Transaction) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return
	}
	if desc {
		asc := less
		less = func(a, b core.Transaction) bool { return asc(b, a) }
	}
	sort.SliceStable(txns, func(i, j int) bool { return less(txns[i], txns[j]) })
}

// GetSpendingTrend totals expenses per calendar date over the trailing
// days*24h. days <= 0 means 30.
func (s *Store) GetSpendingTrend(days int) Trend {
	if days <= 0 {
		days = 30
	}
	end := s.Now()
	r := core.DateRange{Start: end.Add(-time.Duration(days) * 24 * time.Hour), End: end}

	s.mu.RLock()
	defer s.mu.RUnlock()

	trend := Trend{}
	for _, t := range s.transactions {
		if t.Type != core.Expense {
			continue
		}
		d, err := core.ParseDate(t.Date, s.loc)
		if err != nil || !r.Contains(d) {
			continue
		}
		trend[t.Date] = trend[t.Date].Add(t.Amount)
	}
	return trend
}

// Trend maps a YYYY-MM-DD date to the expenses dated on it.
type Trend map[string]decimal.Decimal

// Dates returns the dates of t in ascending order.
func (t Trend) Dates() []string {
	dates := make([]string, 0, len(t))
	for d := range t {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
