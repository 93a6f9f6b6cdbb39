package fieldID

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New()
	assert.NotEmpty(t, id, "Generated id should not be empty")
	assert.True(t, Valid(id), "Generated id should be a canonical uuid: %s", id)
}

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		assert.False(t, seen[id], "Duplicate id %s", id)
		seen[id] = true
	}
}

func TestValid_ErrorHandling(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("this is not a uuid"))
	assert.False(t, Valid("0190a3c4-7b1e-7zzz-8000-000000000000"))
}
