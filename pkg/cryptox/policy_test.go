package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	p := NewPasswordPolicy(DefaultPolicyConfig())

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"strong", "Str0ng!Pass", nil},
		{"empty", "", []string{"Password is required"}},
		{
			"short lowercase",
			"abc",
			[]string{
				"Password must be at least 8 characters long",
				"Password must contain at least one uppercase letter",
				"Password must contain at least one number",
				"Password must contain at least one special character",
			},
		},
		{
			"too long",
			"Aa1!" + strings.Repeat("x", 125),
			[]string{"Password must be less than 128 characters"},
		},
		{
			"no symbol",
			"Abcdefg1",
			[]string{"Password must contain at least one special character"},
		},
		{
			"common password any case",
			"PASSWORD123",
			[]string{
				"Password must contain at least one lowercase letter",
				"Password must contain at least one special character",
				"This password is too common. Please choose a stronger password",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Validate(tt.password)
			require.Equal(t, tt.want, res.Errors)
			require.Equal(t, len(tt.want) == 0, res.Valid)
		})
	}
}

func TestPasswordPolicy_Configurable(t *testing.T) {
	p := NewPasswordPolicy(PolicyConfig{MinLength: 4, CommonPasswords: []string{"hunter2"}})

	require.True(t, p.Validate("abcd").Valid)
	require.Equal(t, []string{"Password must be at least 4 characters long"}, p.Validate("abc").Errors)
	require.Equal(t,
		[]string{"This password is too common. Please choose a stronger password"},
		p.Validate("Hunter2").Errors,
	)
}
