package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	PatternDigits     = `^[0-9]+$`
	PatternLogin      = `^[a-zA-Z0-9_]+$`
	PatternEmail      = `^[\w.-]+@[a-zA-Z\d.-]+\.[a-zA-Z]{2,6}$`
	PatternPersonName = `^[А-Яа-яЁёA-Za-z\-]+$`
	PatternPhone      = `^\+7\d{10}$`
	PatternIPv4       = `^[0-9]{1,3}(\.[0-9]{1,3}){3}$`
)

const passwordSymbols = "!@#$%^&*()_+-="

var (
	validate      = validator.New()
	patternsCache sync.Map
)

// FieldRule describes one form field check. Message replaces the default pattern failure text.
type FieldRule struct {
	Field    string
	Value    string
	MaxLen   int
	Required bool
	Pattern  string
	Message  string
}

// ValidateField checks a single value: required, maximum length in characters, then pattern.
// An empty optional value passes without the pattern being applied.
func ValidateField(value string, maxLen int, required bool, pattern string) (bool, string) {
	if err := validate.Var(strings.TrimSpace(value), "required"); err != nil {
		if required {
			return false, "field is required"
		}
		return true, ""
	}
	if maxLen > 0 {
		if err := validate.Var(value, "max="+strconv.Itoa(maxLen)); err != nil {
			return false, fmt.Sprintf("must be at most %d characters", maxLen)
		}
	}
	if pattern != "" {
		re, err := compilePattern(pattern)
		if err != nil {
			return false, "invalid validation pattern"
		}
		if !re.MatchString(value) {
			return false, "has an invalid format"
		}
	}
	return true, ""
}

// CheckFields returns the first failing rule as a *ValidationError.
func CheckFields(rules ...FieldRule) error {
	for _, rule := range rules {
		ok, message := ValidateField(rule.Value, rule.MaxLen, rule.Required, rule.Pattern)
		if ok {
			continue
		}
		if rule.Message != "" && message == "has an invalid format" {
			message = rule.Message
		}
		return &ValidationError{Field: rule.Field, Message: message}
	}
	return nil
}

// ValidatePassword requires at least 8 characters drawn from letters, digits and
// !@#$%^&*()_+-=, with at least one letter and one digit.
func ValidatePassword(password string) (bool, string) {
	if ok, message := ValidateField(password, 255, true, ""); !ok {
		return false, message
	}
	if len([]rune(password)) < 8 {
		return false, "must be at least 8 characters"
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return false, "contains characters that are not allowed"
		}
	}
	if !hasLetter || !hasDigit {
		return false, "must contain at least one letter and one digit"
	}
	return true, ""
}

// ValidateIPv4 checks a dotted quad whose octets are all within 0-255.
func ValidateIPv4(value string, required bool) (bool, string) {
	ok, message := ValidateField(value, 15, required, PatternIPv4)
	if !ok || value == "" {
		return ok, message
	}
	for _, octet := range strings.Split(value, ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return false, "octets must be between 0 and 255"
		}
	}
	return true, ""
}

// ValidateIPv4List checks a comma separated list of addresses, e.g. DNS servers.
func ValidateIPv4List(value string) (bool, string) {
	if strings.TrimSpace(value) == "" {
		return true, ""
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if ok, message := ValidateIPv4(part, true); !ok {
			return false, fmt.Sprintf("%q %s", part, message)
		}
	}
	return true, ""
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternsCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternsCache.Store(pattern, re)
	return re, nil
}
