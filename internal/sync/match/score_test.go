package match

import "testing"

func TestReversePathMatchScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"first empty", "", "/a", 0},
		{"second empty", "/b", "", 0},
		{"single component mismatch", "a", "b", 0},
		{"single component match", "cc", "cc", 2},
		{"bare separators", "/", "/", 0},
		{"rooted mismatch", "/b", "/a", 0},
		{"rooted match", "/cc", "/cc", 2},
		{"trailing separator breaks match", "/b", "/b/", 0},
		{"identical rooted pair", "/a/b", "/a/b", 2},
		{"identical relative pair", "a/b", "a/b", 2},
		{"tail shared with longer path", "/a/c/a/b", "/a/b", 2},
		{"partial component gets no credit", "/aaa/bbbb/ccc", "/aaa/bbb/ccc", 3},
		{"suffixed ancestor", "/a/b/c12/e34", "/a/b/a65/c12/e34", 6},
		{"debris ancestor", "/a/b/c12/e34", "/a/b/.debris/c12/e34", 6},
		{"substring ancestor", "/a/b/c12/e34", "/a/b/ab/c12/e34", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReversePathMatchScore(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected score %d, got %d", tt.want, got)
			}
			if got := ReversePathMatchScore(tt.b, tt.a); got != tt.want {
				t.Errorf("Expected score %d with swapped arguments, got %d", tt.want, got)
			}
		})
	}
}
