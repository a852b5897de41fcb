package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "RootRider", want: "rootrider"},
		{name: "trims whitespace", input: "  kawasaki_fan  ", want: "kawasaki_fan"},
		{name: "mixed", input: " MotoKonig ", want: "motokonig"},
		{name: "already normal", input: "root", want: "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeUsername(tt.input)
			assert.Equal(t, tt.want, got)

			// Normalization is idempotent.
			assert.Equal(t, got, NormalizeUsername(got))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleOperator))
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
