package core

import (
	"testing"
	"time"
)

func TestTransactionTypeValid(t *testing.T) {
	cases := []struct {
		in TransactionType
		ok bool
	}{
		{Income, true},
		{Expense, true},
		{"", false},
		{"transfer", false},
		{"INCOME", false},
	}
	for _, tc := range cases {
		if got := tc.in.Valid(); got != tc.ok {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.ok, got)
		}
	}
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultSettings()
	theme := "dark"
	off := false

	got := SettingsPatch{Theme: &theme, Notifications: &off}.Apply(base)
	if got.Theme != "dark" || got.Notifications {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Currency != "USD" || got.Language != "en" {
		t.Fatalf("absent fields changed: %+v", got)
	}
	if len(got.SupportedCurrencies) != 3 {
		t.Fatalf("expected 3 currencies, got %d", len(got.SupportedCurrencies))
	}

	got.SupportedCurrencies[0].Code = "XXX"
	if base.SupportedCurrencies[0].Code != "USD" {
		t.Fatalf("apply shares currencies with its input")
	}
}

func TestCategoryCloneCopiesCreatedAt(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Category{ID: "cat_x", CreatedAt: &at}
	cp := c.Clone()
	*cp.CreatedAt = cp.CreatedAt.Add(time.Hour)
	if !c.CreatedAt.Equal(at) {
		t.Fatalf("clone shares CreatedAt")
	}
}

func TestDefaultCategories(t *testing.T) {
	want := map[string]int64{
		"cat_food":          300,
		"cat_books":         200,
		"cat_transport":     100,
		"cat_entertainment": 150,
		"cat_fees":          500,
		"cat_other":         100,
	}
	cats := DefaultCategories()
	if len(cats) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(cats))
	}
	for _, c := range cats {
		b, ok := want[c.ID]
		if !ok {
			t.Fatalf("unexpected category %q", c.ID)
		}
		if c.Budget.IntPart() != b {
			t.Fatalf("%s budget expected %d, got %s", c.ID, b, c.Budget)
		}
		if c.Color == "" {
			t.Fatalf("%s has no color", c.ID)
		}
	}
}
