package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Transaction struct {
		ID          string          `json:"id" yaml:"id"`
		Description string          `json:"description" yaml:"description"`
		Amount      decimal.Decimal `json:"amount" yaml:"amount"`
		Category    string          `json:"category" yaml:"category"` // Category.ID
		Date        string          `json:"date" yaml:"date"`         // YYYY-MM-DD
		Type        TransactionType `json:"type" yaml:"type"`
		Notes       string          `json:"notes" yaml:"notes"`
		CreatedAt   time.Time       `json:"createdAt" yaml:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt" yaml:"updatedAt"`
	}

	Category struct {
		ID        string          `json:"id" yaml:"id"`
		Name      string          `json:"name" yaml:"name"`
		Color     string          `json:"color" yaml:"color"`
		Budget    decimal.Decimal `json:"budget" yaml:"budget"`
		CreatedAt *time.Time      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	}

	Settings struct {
		Theme               string     `json:"theme" yaml:"theme"`
		Currency            string     `json:"currency" yaml:"currency"`
		Notifications       bool       `json:"notifications" yaml:"notifications"`
		Language            string     `json:"language" yaml:"language"`
		SupportedCurrencies []Currency `json:"supportedCurrencies" yaml:"supportedCurrencies"`
	}

	// SettingsPatch carries only the settings fields present in an update or
	// an imported payload.
	SettingsPatch struct {
		Theme               *string    `json:"theme,omitempty" yaml:"theme,omitempty"`
		Currency            *string    `json:"currency,omitempty" yaml:"currency,omitempty"`
		Notifications       *bool      `json:"notifications,omitempty" yaml:"notifications,omitempty"`
		Language            *string    `json:"language,omitempty" yaml:"language,omitempty"`
		SupportedCurrencies []Currency `json:"supportedCurrencies,omitempty" yaml:"supportedCurrencies,omitempty"`
	}

	Currency struct {
		Code   string `json:"code" yaml:"code"`
		Name   string `json:"name" yaml:"name"`
		Symbol string `json:"symbol" yaml:"symbol"`
	}

	// User is the session profile. The record store only reads ID; the
	// dashboard reads Currency and SavingsGoal.
	User struct {
		ID               string           `json:"id"`
		Email            string           `json:"email"`
		Name             string           `json:"name"`
		FirstName        string           `json:"firstName,omitempty"`
		LastName         string           `json:"lastName,omitempty"`
		Currency         string           `json:"currency"`
		SavingsGoal      *decimal.Decimal `json:"savingsGoal,omitempty"`
		LoginTime        *time.Time       `json:"loginTime,omitempty"`
		RegistrationTime *time.Time       `json:"registrationTime,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Clone returns a copy that shares no mutable state with c.
func (c Category) Clone() Category {
	if c.CreatedAt != nil {
		at := *c.CreatedAt
		c.CreatedAt = &at
	}
	return c
}

// Clone returns a copy that shares no mutable state with s.
func (s Settings) Clone() Settings {
	s.SupportedCurrencies = append([]Currency(nil), s.SupportedCurrencies...)
	return s
}

// Apply merges the present fields of p over s.
func (p SettingsPatch) Apply(s Settings) Settings {
	s = s.Clone()
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.SupportedCurrencies != nil {
		s.SupportedCurrencies = append([]Currency(nil), p.SupportedCurrencies...)
	}
	return s
}

// DefaultCategories returns the six categories every new account starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_food", Name: "Food", Color: "#ef4444", Budget: decimal.NewFromInt(300)},
		{ID: "cat_books", Name: "Books", Color: "#6366f1", Budget: decimal.NewFromInt(200)},
		{ID: "cat_transport", Name: "Transport", Color: "#10b981", Budget: decimal.NewFromInt(100)},
		{ID: "cat_entertainment", Name: "Entertainment", Color: "#8b5cf6", Budget: decimal.NewFromInt(150)},
		{ID: "cat_fees", Name: "Fees", Color: "#f59e0b", Budget: decimal.NewFromInt(500)},
		{ID: "cat_other", Name: "Other", Color: "#64748b", Budget: decimal.NewFromInt(100)},
	}
}

// DefaultSettings returns the settings used when a user has none stored.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Currency:      "USD",
		Notifications: true,
		Language:      "en",
		SupportedCurrencies: []Currency{
			{Code: "USD", Name: "US Dollar", Symbol: "$"},
			{Code: "RWF", Name: "Rwandan Franc", Symbol: "FRw"},
			{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
		},
	}
}
