package datatypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"system", RoleSystem, false},
		{"user", RoleUser, false},
		{"assistant", RoleAssistant, false},
		{"", 0, true},
		{"User", 0, true},
		{"developer", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRole)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestRole_ZeroValueIsInvalid(t *testing.T) {
	var r Role

	assert.False(t, r.Valid())
	assert.Empty(t, r.String())

	_, err := json.Marshal(r)
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Role{"role": RoleAssistant})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant"}`, string(out))

	var decoded struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &decoded))
	assert.Equal(t, RoleUser, decoded.Role)

	err = json.Unmarshal([]byte(`{"role":"robot"}`), &decoded)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleStrings(t *testing.T) {
	assert.Equal(t, []string{"system", "user", "assistant"}, RoleStrings())
}
