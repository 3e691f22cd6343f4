package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/session"
)

// SessionView is the state of the signed-in session.
type SessionView struct {
	LoggedIn bool       `json:"loggedIn"`
	User     *core.User `json:"user,omitempty"`
	Theme    string     `json:"theme"`
}

type goalRequest struct {
	Goal decimal.Decimal `json:"goal"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, ok, err := s.sessions.Current(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	theme, err := s.sessions.Theme(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	view := SessionView{LoggedIn: ok, Theme: theme}
	if ok {
		view.User = &user
	}
	JSON(http.StatusOK, view).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	user, err := s.sessions.Login(r.Context(), req)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := s.reopen(r.Context()); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, user).Write(w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req session.RegisterRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	user, err := s.sessions.Register(r.Context(), req)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := s.reopen(r.Context()); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusCreated, user).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := s.reopen(r.Context()); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.sessions.ToggleTheme(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, map[string]string{"theme": theme}).Write(w)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	user, err := s.sessions.SetSavingsGoal(r.Context(), req.Goal)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	s.refreshUser(user)
	JSON(http.StatusOK, user).Write(w)
}
