package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"03/12/25", "2025-03-12"},
		{"3-12-2025", "2025-03-12"},
		{"2025-03-12", "2025-03-12"},
		{"2025-3-2", "2025-03-02"},
		{"12/31/99", "1999-12-31"},
		{"1/1/49", "2049-01-01"},
		{"1/1/50", "1950-01-01"},
		{"6/10/2025", "2025-06-10"},
		// unrecognized input comes back unchanged, not as an error
		{"March 12, 2025", "March 12, 2025"},
		{"n/a", "n/a"},
		{"2025/03/12", "2025/03/12"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDate(tc.in), "input %q", tc.in)
	}
}
