// Package session keeps the signed-in user profile and the global UI flags in
// the shared key-value namespace, and opens the record store of that user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/kv"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
	"smartfinance/internal/validation"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	minLoginPasswordLength = 6
	flagTrue               = "true"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrTermsNotAccepted   = errors.New("Please accept the terms and conditions")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidGoal        = errors.New("savings goal must be a non-negative amount")
)

// FormError lists the failing fields of a registration form.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "Please fix the errors below: " + strings.Join(parts, "; ")
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Currency        string `json:"currency"`
	Terms           bool   `json:"terms"`
}

var registerRules = map[string]validation.FieldRule{
	"firstName": {Type: validation.RuleName, Required: true},
	"lastName":  {Type: validation.RuleName, Required: true},
	"email":     {Type: validation.RuleEmail, Required: true},
	"password":  {Type: validation.RulePassword, Required: true},
}

type Manager struct {
	kv     kv.Store
	now    func() time.Time
	logger *log.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l.WithComponent(log.ComponentSession)
		}
	}
}

func New(store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		kv:     store,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login accepts any address passing the email rule with a password of at
// least six characters and starts a fresh profile named after the local part.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (core.User, error) {
	if !validation.Validate(req.Email, validation.RuleEmail, true).IsValid ||
		len([]rune(req.Password)) < minLoginPasswordLength {
		m.logger.InfoContext(ctx, "Login rejected", log.FieldOperation, "login")
		return core.User{}, ErrInvalidCredentials
	}

	now := m.now().UTC()
	user := core.User{
		ID:        core.NewID("user", now),
		Email:     req.Email,
		Name:      strings.SplitN(req.Email, "@", 2)[0],
		LoginTime: &now,
		Currency:  "USD",
	}
	if err := m.start(ctx, user); err != nil {
		return core.User{}, err
	}
	if req.Remember {
		if err := m.kv.Set(ctx, kv.KeyRememberLogin, flagTrue); err != nil {
			return core.User{}, fmt.Errorf("remember login: %w", err)
		}
	}

	m.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return user, nil
}

// Register validates the form, creates the profile and seeds the default
// records of the new user.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (core.User, error) {
	form := validation.ValidateForm(map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"password":  req.Password,
	}, registerRules)
	if r := validation.PasswordsMatch(req.Password, req.ConfirmPassword); !r.IsValid {
		form.Errors["confirmPassword"] = r.Message
		form.IsValid = false
	}
	if !form.IsValid {
		return core.User{}, &FormError{Fields: form.Errors}
	}
	if !req.Terms {
		return core.User{}, ErrTermsNotAccepted
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := m.now().UTC()
	user := core.User{
		ID:               core.NewID("user", now),
		Email:            req.Email,
		Name:             req.FirstName + " " + req.LastName,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Currency:         currency,
		RegistrationTime: &now,
	}
	if err := m.start(ctx, user); err != nil {
		return core.User{}, err
	}
	if err := records.InitUserData(ctx, m.kv, user.ID); err != nil {
		return core.User{}, fmt.Errorf("initialize user data: %w", err)
	}

	m.logger.InfoContext(ctx, "User registered", log.FieldUserID, user.ID)
	return user, nil
}

func (m *Manager) start(ctx context.Context, user core.User) error {
	if err := kv.SetJSON(ctx, m.kv, kv.KeyUser, user); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if err := m.kv.Set(ctx, kv.KeyIsLoggedIn, flagTrue); err != nil {
		return fmt.Errorf("store login flag: %w", err)
	}
	return nil
}

// Current returns the signed-in profile. It reports false when the login
// flag or the profile is missing.
func (m *Manager) Current(ctx context.Context) (core.User, bool, error) {
	flag, ok, err := m.kv.Get(ctx, kv.KeyIsLoggedIn)
	if err != nil {
		return core.User{}, false, fmt.Errorf("read login flag: %w", err)
	}
	if !ok || flag != flagTrue {
		return core.User{}, false, nil
	}
	var user core.User
	found, err := kv.GetJSON(ctx, m.kv, kv.KeyUser, &user)
	if err != nil {
		return core.User{}, false, fmt.Errorf("read user: %w", err)
	}
	if !found {
		return core.User{}, false, nil
	}
	return user, true, nil
}

// Logout clears the profile and login flags. The user's records and the
// theme stay.
func (m *Manager) Logout(ctx context.Context) error {
	for _, key := range []string{kv.KeyUser, kv.KeyIsLoggedIn, kv.KeyRememberLogin} {
		if err := m.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	m.logger.InfoContext(ctx, "User logged out")
	return nil
}

// Theme returns the stored theme, light by default.
func (m *Manager) Theme(ctx context.Context) (string, error) {
	theme, ok, err := m.kv.Get(ctx, kv.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !ok || theme == "" {
		return ThemeLight, nil
	}
	return theme, nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (m *Manager) ToggleTheme(ctx context.Context) (string, error) {
	theme, err := m.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if theme == ThemeDark {
		next = ThemeLight
	}
	if err := m.kv.Set(ctx, kv.KeyTheme, next); err != nil {
		return "", fmt.Errorf("store theme: %w", err)
	}
	return next, nil
}

// SetSavingsGoal stores goal on the signed-in profile. Zero restores the
// default goal.
func (m *Manager) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) (core.User, error) {
	if goal.IsNegative() {
		return core.User{}, ErrInvalidGoal
	}
	user, ok, err := m.Current(ctx)
	if err != nil {
		return core.User{}, err
	}
	if !ok {
		return core.User{}, ErrNotLoggedIn
	}
	user.SavingsGoal = &goal
	if err := kv.SetJSON(ctx, m.kv, kv.KeyUser, user); err != nil {
		return core.User{}, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

// OpenStore loads the record store of the signed-in user. Without a session
// the store is inert: reads are empty and writes are dropped.
func (m *Manager) OpenStore(ctx context.Context, opts ...records.Option) (*records.Store, core.User, error) {
	user, _, err := m.Current(ctx)
	if err != nil {
		return nil, core.User{}, err
	}
	s, err := records.New(ctx, m.kv, user.ID, opts...)
	if err != nil {
		return nil, core.User{}, err
	}
	return s, user, nil
}
