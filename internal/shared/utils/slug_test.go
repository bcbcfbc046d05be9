package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "African Elephant", "african-elephant"},
		{"already lowercase", "okapi", "okapi"},
		{"diacritics", "Búho Real", "buho-real"},
		{"punctuation", "Darwin's Frog!", "darwins-frog"},
		{"multiple spaces", "Snow   Leopard", "snow-leopard"},
		{"leading and trailing junk", "  --Red Fox--  ", "red-fox"},
		{"numbers kept", "Animal 42", "animal-42"},
		{"only junk", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.input))
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Buho Real", RemoveDiacritics("Búho Real"))
	assert.Equal(t, "aeiou", RemoveDiacritics("àéîõü"))
	assert.Equal(t, "plain", RemoveDiacritics("plain"))
}
