package utils_test

import (
	"testing"

	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestUniqueSlice(t *testing.T) {
	got := utils.UniqueSlice([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("UniqueSlice = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("UniqueSlice = %v, want %v", got, want)
		}
	}
}

func TestEqualPtr(t *testing.T) {
	one, otherOne, two := 1, 1, 2
	tests := []struct {
		name string
		a, b *int
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, &one, false},
		{"same value", &one, &otherOne, true},
		{"different value", &one, &two, false},
	}
	for _, tt := range tests {
		if got := utils.EqualPtr(tt.a, tt.b); got != tt.want {
			t.Fatalf("%s: EqualPtr = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestJoinNonEmpty(t *testing.T) {
	if got := utils.JoinNonEmpty(" 0042 ", "", "Projector"); got != "0042 Projector" {
		t.Fatalf("JoinNonEmpty = %q", got)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := utils.ValidatePhoneNumber("+79161234567", utils.CountryCode); err != nil {
		t.Fatalf("valid number rejected: %v", err)
	}
	if err := utils.ValidatePhoneNumber("+7123", utils.CountryCode); err == nil {
		t.Fatalf("short number accepted")
	}
}
