package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUserID(t *testing.T) {
	t.Run("valid username", func(t *testing.T) {
		id, err := DeriveUserID("alice@example.com")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "example.com/"))
		// sha256 hex digest after the domain
		hash := strings.TrimPrefix(id, "example.com/")
		assert.Len(t, hash, 64)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := DeriveUserID("alice@example.com")
		require.NoError(t, err)
		second, err := DeriveUserID("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("different users get different ids", func(t *testing.T) {
		alice, err := DeriveUserID("alice@example.com")
		require.NoError(t, err)
		bob, err := DeriveUserID("bob@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, alice, bob)
	})

	t.Run("no domain part", func(t *testing.T) {
		_, err := DeriveUserID("alice")
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}

func TestDeriveAdaptorID(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		server   string
		group    string
		want     string
		wantErr  bool
	}{
		{
			name:     "valid triple",
			provider: "org1",
			server:   "rs1",
			group:    "grp1",
			want:     "org1/rs1/grp1",
		},
		{
			name:     "group with dots and dashes",
			provider: "org1",
			server:   "rs.example.org",
			group:    "sensor-group.v2",
			want:     "org1/rs.example.org/sensor-group.v2",
		},
		{
			name:    "empty group",
			group:   "",
			wantErr: true,
		},
		{
			name:    "blank group",
			group:   "   ",
			wantErr: true,
		},
		{
			name:    "group with slash",
			group:   "grp/1",
			wantErr: true,
		},
		{
			name:    "group with special characters",
			group:   "grp$1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveAdaptorID(tt.provider, tt.server, tt.group)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveAdaptorIDDeterministic(t *testing.T) {
	first, err := DeriveAdaptorID("org1", "rs1", "grp1")
	require.NoError(t, err)
	second, err := DeriveAdaptorID("org1", "rs1", "grp1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("grp1"))
	assert.True(t, ValidID("sensor_group.v2-beta"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("a/b"))
	assert.False(t, ValidID("a b"))
}

func TestNewSecret(t *testing.T) {
	first := NewSecret()
	second := NewSecret()
	assert.NotEmpty(t, first)
	assert.NotContains(t, first, "-")
	assert.NotEqual(t, first, second)
}
