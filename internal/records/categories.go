package records

import (
	"context"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/events"
	"smartfinance/internal/log"
)

// DefaultCategoryColor is used when a new category has no color.
const DefaultCategoryColor = "#64748b"

type NewCategory struct {
	Name   string          `json:"name" yaml:"name"`
	Color  string          `json:"color" yaml:"color"`
	Budget decimal.Decimal `json:"budget" yaml:"budget"`
}

// CategoryUpdate merges its non-nil fields over a stored category.
type CategoryUpdate struct {
	Name   *string          `json:"name,omitempty"`
	Color  *string          `json:"color,omitempty"`
	Budget *decimal.Decimal `json:"budget,omitempty"`
}

// AddCategory appends a category.
func (s *Store) AddCategory(ctx context.Context, in NewCategory) (core.Category, error) {
	if !s.Active() {
		s.dropped(ctx, "add category")
		return core.Category{}, nil
	}
	if in.Budget.IsNegative() {
		return core.Category{}, core.ErrInvalidAmount
	}

	now := s.now().UTC()
	c := core.Category{
		ID:        core.NewID("cat", now),
		Name:      in.Name,
		Color:     in.Color,
		Budget:    in.Budget,
		CreatedAt: &now,
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}

	s.mu.Lock()
	next := append(cloneCategories(s.categories), c)
	if err := s.saveCategories(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	s.categories = next
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Category added", log.NewFields().
		WithRecord(s.userID, log.FieldCategoryID, c.ID).
		WithOperation(log.OpCreate).ToSlice()...)
	s.emitCategory(events.CategoryAdded, c)
	return c.Clone(), nil
}

// UpdateCategory merges u over the category with id.
func (s *Store) UpdateCategory(ctx context.Context, id string, u CategoryUpdate) (core.Category, error) {
	if !s.Active() {
		s.dropped(ctx, "update category")
		return core.Category{}, nil
	}
	if u.Budget != nil && u.Budget.IsNegative() {
		return core.Category{}, core.ErrInvalidAmount
	}

	s.mu.Lock()
	i := s.indexOfCategory(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Category{}, ErrNotFound
	}
	next := cloneCategories(s.categories)
	c := next[i]
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.Budget != nil {
		c.Budget = *u.Budget
	}
	next[i] = c
	if err := s.saveCategories(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	s.categories = next
	s.mu.Unlock()

	s.emitCategory(events.CategoryUpdated, c)
	return c.Clone(), nil
}

// DeleteCategory removes the category with id unless a transaction still
// references it, in which case ErrCategoryInUse is returned and nothing
// changes.
func (s *Store) DeleteCategory(ctx context.Context, id string) (core.Category, error) {
	if !s.Active() {
		s.dropped(ctx, "delete category")
		return core.Category{}, nil
	}

	s.mu.Lock()
	i := s.indexOfCategory(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Category{}, ErrNotFound
	}
	for _, t := range s.transactions {
		if t.Category == id {
			s.mu.Unlock()
			return core.Category{}, ErrCategoryInUse
		}
	}

	removed := s.categories[i].Clone()
	next := make([]core.Category, 0, len(s.categories)-1)
	next = append(next, s.categories[:i]...)
	next = append(next, s.categories[i+1:]...)
	if err := s.saveCategories(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Category{}, err
	}
	s.categories = next
	s.mu.Unlock()

	s.emitCategory(events.CategoryDeleted, removed)
	return removed, nil
}

// GetCategories returns every category in insertion order.
func (s *Store) GetCategories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.categories)
}

// GetCategory returns the category with id.
func (s *Store) GetCategory(id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfCategory(id)
	if i < 0 {
		return core.Category{}, ErrNotFound
	}
	return s.categories[i].Clone(), nil
}

func (s *Store) indexOfCategory(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) emitCategory(name events.Name, c core.Category) {
	c = c.Clone()
	s.emit(events.Event{Name: name, Category: &c})
}

func cloneCategories(cats []core.Category) []core.Category {
	out := make([]core.Category, len(cats))
	for i, c := range cats {
		out[i] = c.Clone()
	}
	return out
}

// Budgets returns the budget map keyed by category id.
func (s *Store) Budgets() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBudgets(s.budgets)
}

// SetBudget stores amount for categoryID. The map is not read back for
// enforcement; category budgets drive the dashboard.
func (s *Store) SetBudget(ctx context.Context, categoryID string, amount decimal.Decimal) error {
	if !s.Active() {
		s.dropped(ctx, "set budget")
		return nil
	}
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneBudgets(s.budgets)
	next[categoryID] = amount
	if err := s.saveBudgets(ctx, next); err != nil {
		return err
	}
	s.budgets = next
	return nil
}

func cloneBudgets(b map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Settings returns the user's settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// UpdateSettings merges p over the stored settings.
func (s *Store) UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error) {
	if !s.Active() {
		s.dropped(ctx, "update settings")
		return core.Settings{}, nil
	}

	s.mu.Lock()
	next := p.Apply(s.settings)
	if err := s.saveSettings(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Settings{}, err
	}
	s.settings = next
	s.mu.Unlock()

	out := next.Clone()
	s.emit(events.Event{Name: events.SettingsUpdated, Settings: &out})
	return next.Clone(), nil
}
