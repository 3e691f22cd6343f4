package http

import (
	"net/http"
	"strings"

	"smartfinance/internal/records"
	"smartfinance/internal/validation"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, bad := ParseFilters(r.URL.Query())
	if bad != nil {
		bad.Write(w)
		return
	}
	store, _ := s.current()
	JSON(http.StatusOK, store.GetTransactions(r.Context(), f)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in records.NewTransaction
	if bad := DecodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)
	in.Amount = strings.TrimSpace(in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	in.Notes = sanitizeInput(in.Notes)

	res := validation.ValidateTransaction(in.Description, in.Amount, in.Date, in.Category, in.Type)
	if !res.IsValid {
		UnprocessableEntityError("Please fix the errors below", res.Errors).Write(w)
		return
	}

	store, _ := s.current()
	t, err := store.AddTransaction(r.Context(), in)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusCreated, t).Header("Location", "/api/transactions/"+t.ID).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	t, err := store.GetTransaction(r.PathValue("id"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var u records.TransactionUpdate
	if bad := DecodeJSON(w, r, &u); bad != nil {
		bad.Write(w)
		return
	}

	fields := map[string]string{}
	if u.Description != nil {
		d := sanitizeInput(*u.Description)
		u.Description = &d
		if res := validation.Validate(d, validation.RuleDescription, true); !res.IsValid {
			fields["description"] = res.Message
		}
	}
	if u.Date != nil {
		if res := validation.Validate(*u.Date, validation.RuleDate, true); !res.IsValid {
			fields["date"] = res.Message
		}
	}
	if len(fields) > 0 {
		UnprocessableEntityError("Please fix the errors below", fields).Write(w)
		return
	}

	store, _ := s.current()
	t, err := store.UpdateTransaction(r.Context(), r.PathValue("id"), u)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	t, err := store.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, t).Write(w)
}
