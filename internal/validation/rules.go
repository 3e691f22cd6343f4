// Package validation checks form field values and scores passwords.
//
// Every check reports through Result and never returns an error: a failed
// check is an expected outcome the caller renders next to the field.
package validation

import (
	"regexp"
	"strings"
)

// Rule names understood by Validate.
const (
	RuleDescription    = "description"
	RuleAmount         = "amount"
	RuleDate           = "date"
	RuleCategory       = "category"
	RuleEmail          = "email"
	RulePassword       = "password"
	RuleName           = "name"
	RuleDuplicateWords = "duplicateWords"
	RuleCentsPresent   = "centsPresent"
	RuleBeverage       = "beverage"
)

const (
	MessageRequired = "This field is required"
	MessageInvalid  = "Invalid input"
)

// Result is the outcome of a single field check. Message is empty when the
// value is valid.
type Result struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

var (
	descriptionPattern = regexp.MustCompile(`^\S(?:.*\S)?$`)
	whitespaceRun      = regexp.MustCompile(`\s{2,}`)
	passwordCharset    = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	wordPattern        = regexp.MustCompile(`\w+`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[@$!%*?&]`)
)

// checks maps a rule name to its predicate. Rules that RE2 can express as a
// single pattern use MatchString directly.
var checks = map[string]func(string) bool{
	RuleDescription: func(s string) bool {
		return descriptionPattern.MatchString(s) && !whitespaceRun.MatchString(s)
	},
	RuleAmount:   regexp.MustCompile(`^(0|[1-9]\d*)(\.\d{1,2})?$`).MatchString,
	RuleDate:     regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`).MatchString,
	RuleCategory: regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`).MatchString,
	RuleEmail:    regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`).MatchString,
	RulePassword: func(s string) bool {
		return passwordCharset.MatchString(s) &&
			upperPattern.MatchString(s) &&
			lowerPattern.MatchString(s) &&
			digitPattern.MatchString(s) &&
			specialPattern.MatchString(s)
	},
	RuleName:           regexp.MustCompile(`^[A-Za-z]{2,30}$`).MatchString,
	RuleDuplicateWords: HasDuplicateWords,
	RuleCentsPresent:   regexp.MustCompile(`\.\d{2}\b`).MatchString,
	RuleBeverage:       regexp.MustCompile(`(?i)(coffee|tea|drink|beverage|juice|soda)`).MatchString,
}

var messages = map[string]string{
	RuleDescription: "Description cannot have leading/trailing spaces or consecutive spaces",
	RuleAmount:      "Please enter a valid amount (e.g., 12.50)",
	RuleDate:        "Please enter a valid date (YYYY-MM-DD)",
	RuleCategory:    "Category can only contain letters, spaces, and hyphens",
	RuleEmail:       "Please enter a valid email address",
	RulePassword:    "Password must be 8+ characters with uppercase, lowercase, number, and special character",
	RuleName:        "Name must be 2-30 letters only",
}

// Validate checks value against the named rule.
//
// An empty value is invalid when required and valid otherwise. An unknown
// rule name accepts every value.
func Validate(value, rule string, required bool) Result {
	if value == "" {
		if required {
			return Result{IsValid: false, Message: MessageRequired}
		}
		return Result{IsValid: true}
	}

	check, ok := checks[rule]
	if !ok {
		return Result{IsValid: true}
	}
	if check(value) {
		return Result{IsValid: true}
	}
	msg, ok := messages[rule]
	if !ok {
		msg = MessageInvalid
	}
	return Result{IsValid: false, Message: msg}
}

// KnownRule reports whether rule has a check behind it.
func KnownRule(rule string) bool {
	_, ok := checks[rule]
	return ok
}

// HasDuplicateWords reports whether s repeats a word back to back, ignoring
// case ("the the").
func HasDuplicateWords(s string) bool {
	locs := wordPattern.FindAllStringIndex(s, -1)
	for i := 1; i < len(locs); i++ {
		prev, cur := locs[i-1], locs[i]
		gap := s[prev[1]:cur[0]]
		if gap == "" || strings.TrimSpace(gap) != "" {
			continue
		}
		if strings.EqualFold(s[prev[0]:prev[1]], s[cur[0]:cur[1]]) {
			return true
		}
	}
	return false
}

// SanitizeDescription trims s and collapses every whitespace run to a single
// space.
func SanitizeDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
