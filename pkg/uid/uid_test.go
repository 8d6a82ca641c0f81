package uid

import "testing"

func TestNewIsValid(t *testing.T) {
	id := New()
	if !Valid(string(id)) {
		t.Fatalf("New() produced an invalid id: %q", id)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"well formed", "550e8400-e29b-41d4-a716-446655440000", true},
		{"too short", "550e8400-e29b-41d4-a716", false},
		{"no hyphens", "550e8400e29b41d4a716446655440000", false},
		{"empty", "", false},
		{"garbage", "not-a-uuid-at-all-but-36-characters!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

type fakeExister struct{ used map[string]bool }

func (f fakeExister) Exists(id string) bool { return f.used[id] }

func TestUniqueAvoidsCollisions(t *testing.T) {
	first := New()
	e := fakeExister{used: map[string]bool{string(first): true}}
	got := Unique(e)
	if string(got) == string(first) {
		t.Fatalf("Unique() returned a colliding id %q", got)
	}
	if !Valid(string(got)) {
		t.Fatalf("Unique() produced an invalid id: %q", got)
	}
}
