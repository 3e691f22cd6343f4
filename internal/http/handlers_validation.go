package http

import (
	"net/http"

	"smartfinance/internal/validation"
)

type validateRequest struct {
	Value    string `json:"value"`
	Rule     string `json:"rule"`
	Required bool   `json:"required"`
}

type validateFormRequest struct {
	Data  map[string]string               `json:"data"`
	Rules map[string]validation.FieldRule `json:"rules"`
}

type passwordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm,omitempty"`
}

// PasswordView is the strength of a password and, when a confirmation was
// sent, whether the two match.
type PasswordView struct {
	validation.PasswordStrength
	Match *validation.Result `json:"match,omitempty"`
}

// handleValidate checks one value. Unknown rules pass.
func handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	JSON(http.StatusOK, validation.Validate(req.Value, req.Rule, req.Required)).Write(w)
}

func handleValidateForm(w http.ResponseWriter, r *http.Request) {
	var req validateFormRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	JSON(http.StatusOK, validation.ValidateForm(req.Data, req.Rules)).Write(w)
}

func handlePasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	view := PasswordView{PasswordStrength: validation.ValidatePassword(req.Password)}
	if req.Confirm != "" {
		m := validation.PasswordsMatch(req.Password, req.Confirm)
		view.Match = &m
	}
	JSON(http.StatusOK, view).Write(w)
}
