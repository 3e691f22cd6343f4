package validation

import (
	"strings"
	"unicode/utf8"
)

// Password strength buckets.
const (
	StrengthNone   = "none"
	StrengthWeak   = "weak"
	StrengthFair   = "fair"
	StrengthGood   = "good"
	StrengthStrong = "strong"
)

// PasswordStrength is the score of a password in [0,6] and its bucket.
type PasswordStrength struct {
	Strength string `json:"strength"`
	Score    int    `json:"score"`
	Message  string `json:"message"`
}

// ValidatePassword scores password: 2 points for 8+ characters and one each
// for an uppercase letter, a lowercase letter, a digit and one of @$!%*?&.
// The message lists what is missing in that order.
func ValidatePassword(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{Strength: StrengthNone, Score: 0, Message: "Password is required"}
	}

	score := 0
	var missing []string

	if utf8.RuneCountInString(password) >= 8 {
		score += 2
	} else {
		missing = append(missing, "At least 8 characters")
	}
	if upperPattern.MatchString(password) {
		score++
	} else {
		missing = append(missing, "One uppercase letter")
	}
	if lowerPattern.MatchString(password) {
		score++
	} else {
		missing = append(missing, "One lowercase letter")
	}
	if digitPattern.MatchString(password) {
		score++
	} else {
		missing = append(missing, "One number")
	}
	if specialPattern.MatchString(password) {
		score++
	} else {
		missing = append(missing, "One special character")
	}

	strength := StrengthWeak
	switch {
	case score >= 6:
		strength = StrengthStrong
	case score >= 4:
		strength = StrengthGood
	case score >= 2:
		strength = StrengthFair
	}

	msg := "Strong password!"
	if len(missing) > 0 {
		msg = "Missing: " + strings.Join(missing, ", ")
	}
	return PasswordStrength{Strength: strength, Score: score, Message: msg}
}

// PasswordsMatch checks that the confirmation equals the password.
func PasswordsMatch(password, confirm string) Result {
	if password != confirm {
		return Result{IsValid: false, Message: "Passwords do not match"}
	}
	return Result{IsValid: true}
}
