package validation

import "testing"

func TestCompareCodigos(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "numeric ascending", a: "9", b: "10", want: -1},
		{name: "numeric equal", a: "7", b: "7", want: 0},
		{name: "numeric descending", a: "100", b: "20", want: 1},
		{name: "numeric before non-numeric", a: "999", b: "ABC", want: -1},
		{name: "non-numeric after numeric", a: "ABC", b: "1", want: 1},
		{name: "non-numeric lexicographic", a: "ABC", b: "abd", want: -1},
		{name: "empty is non-numeric", a: "", b: "5", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareCodigos(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Fatalf("CompareCodigos(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
