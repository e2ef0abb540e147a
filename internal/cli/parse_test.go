package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		arg       string
		name      string
		value     string
		expectErr bool
	}{
		{arg: "Accept: application/json", name: "Accept", value: "application/json"},
		{arg: "X-Empty:", name: "X-Empty", value: ""},
		{arg: "  X-Spaced  :  a b  ", name: "X-Spaced", value: "a b"},
		{arg: "Authorization: Basic a:b", name: "Authorization", value: "Basic a:b"},
		{arg: "no-colon", expectErr: true},
		{arg: ": value", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := parseHeader(tt.arg)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseHeaders_LastWins(t *testing.T) {
	headers, err := parseHeaders([]string{"X-A: 1", "X-A: 2", "X-B: 3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-A": "2", "X-B": "3"}, headers)
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"page=2", "filter=a=b", "empty="}, "query parameter")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"page": "2", "filter": "a=b", "empty": ""}, pairs)

	_, err = parsePairs([]string{"page"}, "query parameter")
	require.Error(t, err)
	assert.Equal(t, `invalid query parameter "page": expected key=value`, err.Error())

	_, err = parsePairs([]string{"=2"}, "form field")
	assert.Error(t, err)
}

func TestHasHeader(t *testing.T) {
	headers := map[string]string{"content-type": "application/json"}
	assert.True(t, hasHeader(headers, "Content-Type"))
	assert.False(t, hasHeader(headers, "Accept"))
}
