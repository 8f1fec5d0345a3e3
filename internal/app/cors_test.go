package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"regionpress.kr", "*.regionpress.kr", "localhost:*"}

	assert.True(t, originAllowed(patterns, "https://regionpress.kr"))
	assert.True(t, originAllowed(patterns, "https://admin.regionpress.kr"))
	assert.True(t, originAllowed(patterns, "http://localhost:3000"))
	assert.True(t, originAllowed(patterns, "admin.regionpress.kr"), "bare hosts match too")

	assert.False(t, originAllowed(patterns, "https://regionpress.kr.evil.com"))
	assert.False(t, originAllowed(patterns, "https://otherpress.kr"))
	assert.False(t, originAllowed(nil, "https://regionpress.kr"))
}
