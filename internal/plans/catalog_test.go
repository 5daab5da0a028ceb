package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 4)
	assert.Equal(t, "basicplan", list[0].ID)
	assert.Equal(t, int64(5000), list[0].AmountCents)

	p, ok := c.Lookup("premiumplan")
	require.True(t, ok)
	assert.Equal(t, int64(20000), p.AmountCents)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	content := `plans:
  - id: tiny
    name: Tiny Plan
    amount_cents: 100
    call_limit: 10
    rate_limit: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Tiny Plan", list[0].Name)
	assert.Equal(t, 5, list[0].RateLimit)
}

func TestLoad_RejectsBadCatalog(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty id", "plans:\n  - id: \"\"\n    amount_cents: 100\n"},
		{"zero amount", "plans:\n  - id: x\n    amount_cents: 0\n"},
		{"duplicate id", "plans:\n  - id: x\n    amount_cents: 100\n  - id: x\n    amount_cents: 200\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestGet_UnknownFallsBackToFreeTier(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	p := c.Get("no-such-plan")
	assert.Equal(t, "Free Tier", p.Name)
	assert.Equal(t, int64(100), p.CallLimit)

	p = c.Get("")
	assert.Equal(t, "Free Tier", p.Name)
}
