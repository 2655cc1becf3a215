package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	valid := []string{
		"TestPassword123",
		"Abcdefg1",
		"xY3" + strings.Repeat("a", 5),
	}
	for _, password := range valid {
		assert.NoError(t, ValidatePassword(password), "expected %q to pass", password)
	}

	invalid := map[string]string{
		"too short":      "Ab1",
		"no uppercase":   "password123",
		"no lowercase":   "PASSWORD123",
		"no digit":       "PasswordOnly",
		"empty":          "",
		"excessive size": "Aa1" + strings.Repeat("x", 200),
	}
	for name, password := range invalid {
		assert.Error(t, ValidatePassword(password), "case %q: expected %q to fail", name, password)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"user@example.com",
		"first.last+tag@sub.domain.io",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), "expected %q to pass", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missinglocal.com",
		"user@",
		"user@nodot",
		"user@domain.c",
		"user name@example.com",
		"a@" + strings.Repeat("x", 250) + ".com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), "expected %q to fail", email)
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateName("Ada"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("n", 101)))
}
