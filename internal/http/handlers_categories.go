package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
	"smartfinance/internal/validation"
)

type budgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	JSON(http.StatusOK, store.GetCategories()).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in records.NewCategory
	if bad := DecodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	in.Name = sanitizeInput(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if res := validation.Validate(in.Name, validation.RuleCategory, true); !res.IsValid {
		UnprocessableEntityError("Please fix the errors below", map[string]string{"name": res.Message}).Write(w)
		return
	}

	store, _ := s.current()
	c, err := store.AddCategory(r.Context(), in)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusCreated, c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var u records.CategoryUpdate
	if bad := DecodeJSON(w, r, &u); bad != nil {
		bad.Write(w)
		return
	}
	if u.Name != nil {
		name := sanitizeInput(*u.Name)
		u.Name = &name
		if res := validation.Validate(name, validation.RuleCategory, true); !res.IsValid {
			UnprocessableEntityError("Please fix the errors below", map[string]string{"name": res.Message}).Write(w)
			return
		}
	}

	store, _ := s.current()
	c, err := store.UpdateCategory(r.Context(), r.PathValue("id"), u)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	c, err := store.DeleteCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, c).Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	JSON(http.StatusOK, store.Budgets()).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetRequest
	if bad := DecodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	store, _ := s.current()
	category := r.PathValue("category")
	if err := store.SetBudget(r.Context(), category, in.Amount); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, map[string]decimal.Decimal{category: in.Amount}).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	JSON(http.StatusOK, store.Settings()).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p core.SettingsPatch
	if bad := DecodeJSON(w, r, &p); bad != nil {
		bad.Write(w)
		return
	}
	store, _ := s.current()
	settings, err := store.UpdateSettings(r.Context(), p)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, settings).Write(w)
}
