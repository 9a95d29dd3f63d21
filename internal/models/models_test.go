package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipCodeUnmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected ZipCode
	}{
		{`97331`, "97331"},
		{`"97331"`, "97331"},
		{`"02134"`, "02134"},
		{`2134`, "2134"},
		{`"abcde"`, "abcde"},
		{`97.5`, "97.5"},
	}

	for _, tt := range tests {
		var z ZipCode
		require.NoError(t, json.Unmarshal([]byte(tt.input), &z), tt.input)
		assert.Equal(t, tt.expected, z, tt.input)
	}

	for _, bad := range []string{`true`, `{}`, `[1]`} {
		var z ZipCode
		assert.Error(t, json.Unmarshal([]byte(bad), &z), bad)
	}
}

func TestBusinessRequestNullZipCode(t *testing.T) {
	var req BusinessRequest
	require.NoError(t, json.Unmarshal([]byte(`{"zip_code": null}`), &req))
	assert.Nil(t, req.ZipCode)
}
