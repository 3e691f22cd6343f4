package validation

import "smartfinance/internal/core"

// FieldRule binds a form field to a rule name.
type FieldRule struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FormResult collects the message of every failing field.
type FormResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// ValidateForm runs every rule against the matching value in data. Fields
// missing from data are checked as empty.
func ValidateForm(data map[string]string, rules map[string]FieldRule) FormResult {
	res := FormResult{IsValid: true, Errors: map[string]string{}}
	for field, rule := range rules {
		r := Validate(data[field], rule.Type, rule.Required)
		if !r.IsValid {
			res.Errors[field] = r.Message
			res.IsValid = false
		}
	}
	return res
}

// Messages of the transaction form checks that have no rule of their own.
const (
	MessageCategoryRequired = "Please choose a category"
	MessageInvalidType      = "Type must be income or expense"
)

var transactionRules = map[string]FieldRule{
	"description": {Type: RuleDescription, Required: true},
	"amount":      {Type: RuleAmount, Required: true},
	"date":        {Type: RuleDate, Required: true},
}

// ValidateTransaction checks a transaction entry: description, amount and
// date against their rules, a non-empty category id and a known type.
func ValidateTransaction(description, amount, date, category string, typ core.TransactionType) FormResult {
	res := ValidateForm(map[string]string{
		"description": description,
		"amount":      amount,
		"date":        date,
	}, transactionRules)
	if category == "" {
		res.Errors["category"] = MessageCategoryRequired
		res.IsValid = false
	}
	if !typ.Valid() {
		res.Errors["type"] = MessageInvalidType
		res.IsValid = false
	}
	return res
}

// FormatAmount renders a user supplied amount with two decimals.
func FormatAmount(s string) string {
	return core.FormatAmount(s)
}
