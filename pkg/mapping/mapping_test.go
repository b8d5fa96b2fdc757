package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHeaders_YAMLKeepsOrder(t *testing.T) {
	src := `
status: 201
headers:
  X-Zeta: z
  Content-Type: application/json
  X-Alpha: a
latency: 20
`
	var resp ResponseSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &resp))

	assert.Equal(t, Headers{
		{Name: "X-Zeta", Value: "z"},
		{Name: "Content-Type", Value: "application/json"},
		{Name: "X-Alpha", Value: "a"},
	}, resp.Headers)
	assert.Equal(t, 201, resp.StatusCode())
	assert.Equal(t, 20, resp.Latency)

	out, err := yaml.Marshal(resp.Headers)
	require.NoError(t, err)
	assert.Equal(t, "X-Zeta: z\nContent-Type: application/json\nX-Alpha: a\n", string(out))
}

func TestHeaders_JSONRoundTripKeepsOrder(t *testing.T) {
	h := Headers{{Name: "B", Value: "2"}, {Name: "A", Value: "1"}}

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":"2","A":"1"}`, string(data))
	assert.Equal(t, `{"B":"2","A":"1"}`, string(data))

	var back Headers
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)
}

func TestHeaders_Get(t *testing.T) {
	h := Headers{{Name: "X", Value: "1"}, {Name: "X", Value: "2"}}
	v, ok := h.Get("X")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = h.Get("Y")
	assert.False(t, ok)
}

func TestHeaders_RejectsNonMap(t *testing.T) {
	var resp ResponseSpec
	err := yaml.Unmarshal([]byte("headers: [a, b]"), &resp)
	assert.Error(t, err)
}

func TestResponseSpec_DefaultStatus(t *testing.T) {
	assert.Equal(t, 200, ResponseSpec{}.StatusCode())
}

func TestMapping_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       Mapping
		wantErr string
	}{
		{"minimal ok", Mapping{Request: RequestSpec{URL: "/"}}, ""},
		{"bad status", Mapping{Response: ResponseSpec{Status: 42}}, "out of range"},
		{"negative latency", Mapping{Response: ResponseSpec{Latency: -1}}, "latency"},
		{"body and file", Mapping{Response: ResponseSpec{Body: "x", File: "y"}}, "mutually exclusive"},
		{"dbset without db", Mapping{DBSet: &DBSetRef{Key: "1"}}, "dbset.db"},
		{"dbset bad fallback", Mapping{DBSet: &DBSetRef{DB: "u", Fallback: "drop"}}, "fallback"},
		{"bad method", Mapping{Request: RequestSpec{Method: "GET /"}}, "method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
