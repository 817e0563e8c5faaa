package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewInviteCode()
		assert.Len(t, code, 7)
		assert.False(t, strings.Contains(code, "-"))
		seen[code] = true
	}
	// Collisions across 100 draws would point at a broken generator.
	assert.Greater(t, len(seen), 95)
}

func TestNewTaskCode(t *testing.T) {
	code := NewTaskCode()
	assert.Len(t, code, 6)
	assert.False(t, strings.Contains(code, "-"))
}
