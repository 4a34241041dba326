package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a****@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, "d****@b.co", MaskEmail("demo@b.co"))
	assert.Equal(t, "****", MaskEmail("not-an-email"))
	assert.Equal(t, "****", MaskEmail("@example.com"))
	assert.Equal(t, "****", MaskEmail(""))
}

func TestMaskMobile(t *testing.T) {
	assert.Equal(t, "**********5678", MaskMobile("+4915112345678"))
	assert.Equal(t, "****0100", MaskMobile("+15550100"))
	assert.Equal(t, "****", MaskMobile("123"))
	assert.Equal(t, "****", MaskMobile(""))
}
