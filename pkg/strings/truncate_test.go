package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string cut", "hello world this is a long string", 15, "hello world ..."},
		{"newlines collapsed", "hello\n\n\nworld", 20, "hello world"},
		{"tabs and carriage returns", "a\t\tb\r\nc", 20, "a b c"},
		{"surrounding whitespace trimmed", "  <html>\n  oops </html>  ", 0, "<html> oops </html>"},
		{"no limit", "x y z", -1, "x y z"},
		{"tiny limit clamped", "abcdefgh", 2, "a..."},
		{"runes not bytes", "Vardagsrum ööö åäö", 12, "Vardagsru..."},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SingleLine(tt.input, tt.maxLen))
		})
	}
}
