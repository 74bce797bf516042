package ordercode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("ORD-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, Code{Prefix: "ORD", Year: "2025", Serial: 42}, c)
	assert.Equal(t, "ORD-2025-0042", c.String())
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"BADCODE",
		"ORD-2025",
		"ORD-2025-00-1",
		"ORD-2025-abc",
		"",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)

			var pErr *ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, input, pErr.Input)
		})
	}
}

func TestCode_Succ(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ORD-2025-0001", want: "ORD-2025-0002"},
		{in: "ORD-2025-0099", want: "ORD-2025-0100"},
		{in: "ORD-2025-9999", want: "ORD-2025-10000"},
		{in: "INV-24-7", want: "INV-24-0008"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Succ().String())
		})
	}
}
