package itembank

import (
	"testing"
)

func TestRegistry_PublishKeepsOldVersions(t *testing.T) {
	v1, err := New("v1.0.0", testItems())
	if err != nil {
		t.Fatalf("New v1: %v", err)
	}
	reg := NewRegistry(v1)

	items := testItems()
	items[0].Params.Difficulty = 2
	v2, err := New("v1.1.0", items)
	if err != nil {
		t.Fatalf("New v2: %v", err)
	}
	if err := reg.Publish(v2); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if reg.Current().Version() != "v1.1.0" {
		t.Errorf("current = %s, want v1.1.0", reg.Current().Version())
	}

	pinned, err := reg.Version("v1.0.0")
	if err != nil {
		t.Fatalf("Version(v1.0.0): %v", err)
	}
	it, _ := pinned.GetItem("m2")
	if it.Params.Difficulty != 0.5 {
		t.Errorf("pinned difficulty = %v, want 0.5", it.Params.Difficulty)
	}
}

func TestRegistry_RejectsOlderVersion(t *testing.T) {
	v2, _ := New("v2.0.0", testItems())
	reg := NewRegistry(v2)

	v1, _ := New("v1.9.9", testItems())
	if err := reg.Publish(v1); err == nil {
		t.Error("Publish(older) succeeded, want error")
	}
	if err := reg.Publish(v2); err == nil {
		t.Error("Publish(same) succeeded, want error")
	}
	if _, err := reg.Version("v0.0.1"); err == nil {
		t.Error("Version(unknown) succeeded, want error")
	}
}
