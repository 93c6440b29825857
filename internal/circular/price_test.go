package circular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/nalcoscraper/internal/types"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expected    float64
		expectError bool
	}{
		{
			name:     "plain integer rupees",
			raw:      "268250",
			expected: 268.250,
		},
		{
			name:     "comma separated",
			raw:      "268,250",
			expected: 268.250,
		},
		{
			name:     "surrounding whitespace",
			raw:      " 270,100 ",
			expected: 270.100,
		},
		{
			name:     "fractional rupees round to three decimals",
			raw:      "268250.5",
			expected: 268.251,
		},
		{
			name:        "non numeric",
			raw:         "abc",
			expectError: true,
		},
		{
			name:        "empty string",
			raw:         "",
			expectError: true,
		},
		{
			name:        "lone decimal point",
			raw:         ".",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePrice(tt.raw)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrBadPrice)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestParseStoredPrice(t *testing.T) {
	got, err := ParseStoredPrice("268.25")
	require.NoError(t, err)
	assert.InDelta(t, 268.25, got, 1e-9)

	got, err = ParseStoredPrice("1,268.25")
	require.NoError(t, err)
	assert.InDelta(t, 1268.25, got, 1e-9)

	_, err = ParseStoredPrice("n/a")
	assert.ErrorIs(t, err, types.ErrBadPrice)

	_, err = ParseStoredPrice("")
	assert.Error(t, err)
}
