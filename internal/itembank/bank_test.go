package itembank

import (
	"errors"
	"testing"
)

func testItems() []Item {
	return []Item{
		{ID: "m2", Section: SectionCoreMath, Params: Params{Discrimination: 1, Difficulty: 0.5}},
		{ID: "m1", Section: SectionCoreMath, Params: Params{Discrimination: 1, Difficulty: -0.5}},
		{ID: "r1", Section: SectionAppliedReasoning, Params: Params{Discrimination: 1.2, Guessing: 0.2}},
		{ID: "x1", Section: "custom", Params: Params{Discrimination: 0.8}},
	}
}

func TestNew_Indices(t *testing.T) {
	b, err := New("v1.0.0", testItems())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Len() != 4 {
		t.Errorf("Len = %d, want 4", b.Len())
	}
	if b.Version() != "v1.0.0" {
		t.Errorf("Version = %q, want v1.0.0", b.Version())
	}

	want := []Section{SectionCoreMath, SectionAppliedReasoning, "custom"}
	got := b.Sections()
	if len(got) != len(want) {
		t.Fatalf("Sections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sections[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if b.HasSection(SectionAIConceptual) {
		t.Error("HasSection(ai_conceptual) = true, want false")
	}
}

func TestGetItem(t *testing.T) {
	b, err := New("v1.0.0", testItems())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	it, err := b.GetItem("r1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if it.Params.Guessing != 0.2 {
		t.Errorf("guessing = %v, want 0.2", it.Params.Guessing)
	}

	_, err = b.GetItem("missing")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("GetItem(missing) err = %v, want ErrItemNotFound", err)
	}
}

func TestGetCandidateItems_ExcludesAndOrders(t *testing.T) {
	b, err := New("v1.0.0", testItems())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	all := b.GetCandidateItems(SectionCoreMath, nil)
	if len(all) != 2 || all[0].ID != "m1" || all[1].ID != "m2" {
		t.Fatalf("candidates = %v, want [m1 m2]", ids(all))
	}

	rest := b.GetCandidateItems(SectionCoreMath, map[string]bool{"m1": true})
	if len(rest) != 1 || rest[0].ID != "m2" {
		t.Errorf("candidates = %v, want [m2]", ids(rest))
	}

	if got := b.GetCandidateItems("nope", nil); len(got) != 0 {
		t.Errorf("unknown section candidates = %v, want none", ids(got))
	}
}

func TestNew_CopiesInput(t *testing.T) {
	items := testItems()
	items[0].Hints = []string{"one"}
	b, err := New("v1.0.0", items)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	items[0].Params.Difficulty = 99
	items[0].Hints[0] = "mutated"

	it, _ := b.GetItem("m2")
	if it.Params.Difficulty != 0.5 {
		t.Errorf("difficulty = %v, want 0.5 (snapshot must not change)", it.Params.Difficulty)
	}
	if it.Hints[0] != "one" {
		t.Errorf("hint = %q, want %q", it.Hints[0], "one")
	}
}

func TestScore_Normalizes(t *testing.T) {
	it := Item{Content: Content{Answer: "6x + 2"}}
	tests := []struct {
		answer string
		want   bool
	}{
		{"6x + 2", true},
		{"  6X   +  2 ", true},
		{"6x+2", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := it.Score(tt.answer); got != tt.want {
			t.Errorf("Score(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestSectionForDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   Section
	}{
		{"calculus_basics", SectionCoreMath},
		{"systems_thinking", SectionAppliedReasoning},
		{"ai_ethics", SectionAIConceptual},
		{"underwater_basket_weaving", SectionAppliedReasoning},
	}
	for _, tt := range tests {
		if got := SectionForDomain(tt.domain); got != tt.want {
			t.Errorf("SectionForDomain(%q) = %q, want %q", tt.domain, got, tt.want)
		}
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
