package itembank

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateItems_RejectsBadCalibration(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantMsg string
	}{
		{"zero discrimination", Params{Discrimination: 0}, "discrimination"},
		{"negative discrimination", Params{Discrimination: -1}, "discrimination"},
		{"nan difficulty", Params{Discrimination: 1, Difficulty: math.NaN()}, "difficulty"},
		{"infinite difficulty", Params{Discrimination: 1, Difficulty: math.Inf(1)}, "difficulty"},
		{"guessing one", Params{Discrimination: 1, Guessing: 1}, "guessing"},
		{"negative guessing", Params{Discrimination: 1, Guessing: -0.1}, "guessing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItems([]Item{{ID: "a", Section: SectionCoreMath, Params: tt.params}})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidBank) {
				t.Errorf("err = %v, want ErrInvalidBank", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should mention %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateItems_DetectsDuplicateID(t *testing.T) {
	items := []Item{
		{ID: "a", Section: SectionCoreMath, Params: Params{Discrimination: 1}},
		{ID: "a", Section: SectionCoreMath, Params: Params{Discrimination: 1}},
	}
	err := validateItems(items)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestValidateItems_MissingFields(t *testing.T) {
	items := []Item{
		{ID: "", Section: SectionCoreMath, Params: Params{Discrimination: 1}},
		{ID: "b", Params: Params{Discrimination: 1}},
	}
	err := validateItems(items)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"empty id", "empty section"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestNew_RejectsBadVersion(t *testing.T) {
	for _, v := range []string{"", "1.0.0", "latest"} {
		if _, err := New(v, nil); err == nil {
			t.Errorf("New(%q) succeeded, want version error", v)
		}
	}
}
