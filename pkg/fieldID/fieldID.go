package fieldID

import (
	"strings"

	"github.com/samborkent/uuidv7"
)

// New returns a time-ordered unique identifier for a form field or document.
func New() string {
	return uuidv7.New().String()
}

// Valid reports whether id has the canonical 8-4-4-4-12 hex layout.
func Valid(id string) bool {
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		return false
	}
	for i, want := range []int{8, 4, 4, 4, 12} {
		if len(parts[i]) != want {
			return false
		}
		for _, r := range parts[i] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return false
			}
		}
	}
	return true
}
