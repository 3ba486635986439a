package errors

import (
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ValidateIterations checks a rewrite generation count.
// Negative counts are always rejected. A positive max additionally bounds
// the count, since expanded strings grow exponentially with it.
func ValidateIterations(n, max int) error {
	if n < 0 {
		return New(ErrCodeInvalidArgument, "iterations must be non-negative, got %d", n)
	}
	if max > 0 && n > max {
		return New(ErrCodeInvalidArgument, "iterations must be at most %d, got %d", max, n)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidArgument, "%s must be a finite number, got %v", name, v)
	}
	return nil
}

// ValidateRange checks that v is finite and lies in [min, max].
func ValidateRange(name string, v, min, max float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < min || v > max {
		return New(ErrCodeInvalidArgument, "%s must be between %g and %g, got %g", name, min, max, v)
	}
	return nil
}

// ValidateAngle checks a turtle rotation angle in degrees.
func ValidateAngle(deg float64) error {
	return ValidateFinite("angle", deg)
}

// ValidateStep checks a turtle step size.
func ValidateStep(step float64) error {
	return ValidateFinite("step size", step)
}

// ValidateThickness checks a rendering thickness multiplier.
func ValidateThickness(v float64) error {
	if err := ValidateFinite("thickness", v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidArgument, "thickness must be positive, got %g", v)
	}
	return nil
}

// speciesIDRegex matches catalogue identifiers such as "silver-birch".
var speciesIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateSpeciesID validates a species catalogue identifier.
func ValidateSpeciesID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSpecies, "species id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidSpecies, "species id too long (max 64 characters)")
	}
	if !speciesIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSpecies, "invalid species id: %q", id)
	}
	return nil
}

// branchIDRegex matches derived branch identities: "root" followed by one
// or more "-k" child indices.
var branchIDRegex = regexp.MustCompile(`^root(-[0-9]+)+$`)

// ValidateBranchID validates a prunable branch identity.
// The synthetic root is not a branch and is rejected.
func ValidateBranchID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBranch, "branch id cannot be empty")
	}
	if id == "root" {
		return New(ErrCodeInvalidBranch, "the root is not a prunable branch")
	}
	if !branchIDRegex.MatchString(id) {
		return New(ErrCodeInvalidBranch, "invalid branch id: %q", id)
	}
	return nil
}

// ValidateRuleKey checks that a production rule key is exactly one
// printable symbol.
func ValidateRuleKey(key string) error {
	if utf8.RuneCountInString(key) != 1 {
		return New(ErrCodeInvalidInput, "rule key must be a single symbol, got %q", key)
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || unicode.IsControl(r) || unicode.IsSpace(r) {
		return New(ErrCodeInvalidInput, "rule key must be a printable symbol, got %q", key)
	}
	return nil
}

// ValidateSymbols rejects symbol strings that are not valid UTF-8.
// Symbols are rewritten rune by rune, and invalid bytes would not survive.
func ValidateSymbols(name, s string) error {
	if !utf8.ValidString(s) {
		return New(ErrCodeInvalidInput, "%s must be valid UTF-8, got %q", name, s)
	}
	return nil
}
