package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_searchPattern(t *testing.T) {
	tcases := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "empty query matches everything",
			query:    "",
			expected: "%%",
		},
		{
			name:     "plain query",
			query:    "fpga",
			expected: "%fpga%",
		},
		{
			name:     "percent is escaped",
			query:    "100%",
			expected: `%100\%%`,
		},
		{
			name:     "underscore is escaped",
			query:    "foo_bar",
			expected: `%foo\_bar%`,
		},
		{
			name:     "backslash is escaped",
			query:    `a\b`,
			expected: `%a\\b%`,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, searchPattern(tc.query))
		})
	}
}
