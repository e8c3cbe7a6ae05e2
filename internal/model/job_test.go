package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriFromBool(t *testing.T) {
	truthy := true
	falsy := false

	assert.Equal(t, TriUnknown, TriFromBool(nil))
	assert.Equal(t, TriTrue, TriFromBool(&truthy))
	assert.Equal(t, TriFalse, TriFromBool(&falsy))
}

func TestTri_ZeroValueIsUnknown(t *testing.T) {
	var p Posting
	assert.False(t, p.Remote.Known())
	assert.False(t, p.Remote.True())
	assert.False(t, p.Remote.False())
}

func TestTri_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Tri
		out  string
	}{
		{"true", `true`, TriTrue, `true`},
		{"false", `false`, TriFalse, `false`},
		{"null", `null`, TriUnknown, `null`},
		{"garbage decodes unknown", `"yes"`, TriUnknown, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tri Tri
			require.NoError(t, json.Unmarshal([]byte(tt.in), &tri))
			assert.Equal(t, tt.want, tri)

			encoded, err := json.Marshal(tri)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(encoded))
		})
	}
}

func TestTri_String(t *testing.T) {
	assert.Equal(t, "true", TriTrue.String())
	assert.Equal(t, "false", TriFalse.String())
	assert.Equal(t, "", TriUnknown.String())
}
