package utils_test

import (
	"strings"
	"testing"

	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		maxLen   int
		required bool
		pattern  string
		wantOk   bool
	}{
		{"required and empty", "  ", 10, true, "", false},
		{"optional and empty", "", 10, false, utils.PatternDigits, true},
		{"too long", strings.Repeat("a", 11), 10, false, "", false},
		{"cyrillic counts runes", "Иванов", 6, true, "", true},
		{"pattern mismatch", "12a", 10, true, utils.PatternDigits, false},
		{"pattern match", "0042", 10, true, utils.PatternDigits, true},
	}
	for _, tt := range tests {
		ok, message := utils.ValidateField(tt.value, tt.maxLen, tt.required, tt.pattern)
		if ok != tt.wantOk {
			t.Fatalf("%s: ok = %v (%s), want %v", tt.name, ok, message, tt.wantOk)
		}
		if !ok && message == "" {
			t.Fatalf("%s: failure without a message", tt.name)
		}
	}
}

func TestCheckFieldsReturnsFirstFailure(t *testing.T) {
	err := utils.CheckFields(
		utils.FieldRule{Field: "name", Value: "Board", MaxLen: 255, Required: true},
		utils.FieldRule{Field: "phone", Value: "8900", Pattern: utils.PatternPhone, Message: "must look like +7XXXXXXXXXX"},
		utils.FieldRule{Field: "login", Value: "", Required: true},
	)
	validationErr, ok := err.(*utils.ValidationError)
	if !ok {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if validationErr.Field != "phone" || validationErr.Message != "must look like +7XXXXXXXXXX" {
		t.Fatalf("err = %+v", validationErr)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd1", true},
		{"abc123!@", true},
		{"short1", false},
		{"onlyletters", false},
		{"12345678", false},
		{"Пароль123", false},
		{"with space1", false},
	}
	for _, tt := range tests {
		if ok, message := utils.ValidatePassword(tt.password); ok != tt.want {
			t.Fatalf("ValidatePassword(%q) = %v (%s), want %v", tt.password, ok, message, tt.want)
		}
	}
}

func TestValidateIPv4(t *testing.T) {
	tests := []struct {
		value    string
		required bool
		want     bool
	}{
		{"192.168.0.1", true, true},
		{"255.255.255.255", true, true},
		{"256.1.1.1", true, false},
		{"10.0.0", true, false},
		{"", true, false},
		{"", false, true},
		{"host.local", false, false},
	}
	for _, tt := range tests {
		if ok, _ := utils.ValidateIPv4(tt.value, tt.required); ok != tt.want {
			t.Fatalf("ValidateIPv4(%q, %v) = %v, want %v", tt.value, tt.required, ok, tt.want)
		}
	}

	if ok, _ := utils.ValidateIPv4List("8.8.8.8, 1.1.1.1"); !ok {
		t.Fatalf("valid list rejected")
	}
	if ok, message := utils.ValidateIPv4List("8.8.8.8, 300.1.1.1"); ok || !strings.Contains(message, "300.1.1.1") {
		t.Fatalf("invalid list: ok = %v, message = %q", ok, message)
	}
}
