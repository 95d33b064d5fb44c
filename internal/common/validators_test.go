package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Str0ngpass", "password"))
	assert.Error(t, ValidatePassword("Sh0rt", "password"))
	assert.Error(t, ValidatePassword("alllowercase1", "password"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE1", "password"))
	assert.Error(t, ValidatePassword("NoDigitsHere", "password"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("9876543210", "phone"))
	assert.NoError(t, ValidatePhone(" 9876543210 ", "phone"))
	assert.Error(t, ValidatePhone("98765", "phone"))
	assert.Error(t, ValidatePhone("98765432101", "phone"))
	assert.Error(t, ValidatePhone("98765-4321", "phone"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("asha@example.com", "email"))
	assert.Error(t, ValidateEmail("", "email"))
	assert.Error(t, ValidateEmail("not-an-email", "email"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "asha@example.com", NormalizeEmail("  Asha@Example.COM "))
}

func TestNormalizePagination(t *testing.T) {
	page, limit, offset := NormalizePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	page, limit, offset = NormalizePagination(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 100, offset)

	_, limit, _ = NormalizePagination(1, 5000)
	assert.Equal(t, 1000, limit)
}
