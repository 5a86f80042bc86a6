package util

import "testing"

func TestSanitizeKeyComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: ".pdf", want: ".pdf"},
		{name: "slashes deleted", in: "a/b\\c.pdf", want: "abc.pdf"},
		{name: "denylist deleted not substituted", in: `.p*d?f#%&`, want: ".pdf"},
		{name: "whitespace deleted", in: ". p d f", want: ".pdf"},
		{name: "control chars deleted", in: ".p\x00df\n", want: ".pdf"},
		{name: "all illegal", in: `\/:*?`, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeKeyComponent(tt.in); got != tt.want {
				t.Fatalf("SanitizeKeyComponent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
