package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPostgres_Validates(t *testing.T) {
	_, err := NewPostgres(nil)
	require.Error(t, err)
}

func TestLikePattern_EscapesMetacharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"conversation:s1", "conversation:s1%"},
		{"a%b", `a\%b%`},
		{"a_b", `a\_b%`},
		{`a\b`, `a\\b%`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, likePattern(tc.in))
	}
}
