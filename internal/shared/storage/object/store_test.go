package object

import (
	"errors"
	"testing"
)

func TestValidateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "plain key", key: "0b5c7e9a.pdf", wantErr: false},
		{name: "uuid with extension", key: "3f8a2d1c-9b7e-4f6a-8c5d-1e2f3a4b5c6d.docx", wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "slash", key: "a/b.pdf", wantErr: true},
		{name: "backslash", key: `a\b.pdf`, wantErr: true},
		{name: "colon", key: "a:b", wantErr: true},
		{name: "wildcard", key: "a*b", wantErr: true},
		{name: "question mark", key: "a?b", wantErr: true},
		{name: "quote", key: `a"b`, wantErr: true},
		{name: "angle brackets", key: "a<b>", wantErr: true},
		{name: "pipe", key: "a|b", wantErr: true},
		{name: "hash", key: "a#b", wantErr: true},
		{name: "percent", key: "a%b", wantErr: true},
		{name: "ampersand", key: "a&b", wantErr: true},
		{name: "space", key: "a b", wantErr: true},
		{name: "control char", key: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateKey(tt.key)
			if tt.wantErr && !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("ValidateKey(%q) = %v, want ErrInvalidKey", tt.key, err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ValidateKey(%q) = %v, want nil", tt.key, err)
			}
		})
	}
}
