package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{79, 24, true},
		{120, 23, true},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFrameFillsHeight(t *testing.T) {
	header := RenderHeader("Assessment", "learner", 100)
	footer := RenderFooter([]KeyHint{{Key: "Tab", Description: "Hint"}}, 100)
	frame := RenderFrame(header, "body", footer, 100, 30)

	if got := lipgloss.Height(frame); got != 30 {
		t.Errorf("frame height = %d, want 30", got)
	}
	for _, want := range []string{"adaptiq", "Assessment", "learner", "Tab", "Hint", "body"} {
		if !strings.Contains(frame, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}
