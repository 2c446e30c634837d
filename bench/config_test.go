package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultProfileOrder, cfg.Profiles)
}

func TestConfig_Validate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero overload", func(c *Config) { c.OverloadFPS = 0 }},
		{"target below overload", func(c *Config) { c.TargetFPS = 20 }},
		{"empty window", func(c *Config) { c.WindowSize = 0 }},
		{"zero step", func(c *Config) { c.InitialStep = 0 }},
		{"negative settle", func(c *Config) { c.SettleDelay = -1 }},
		{"zero observations", func(c *Config) { c.MinObservations = 0 }},
		{"zero heavy observations", func(c *Config) { c.HeavyMinObservations = 0 }},
		{"no profiles", func(c *Config) { c.Profiles = nil }},
		{"unknown profile", func(c *Config) { c.Profiles = []string{"RenderOnly"} }},
		{"duplicate profile", func(c *Config) { c.Profiles = []string{ProfileRender, ProfileRender} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_ResolveProfiles_AppliesThresholdsByWeight(t *testing.T) {
	// GIVEN custom thresholds and a reordered subset
	cfg := DefaultConfig()
	cfg.MinObservations = 12
	cfg.HeavyMinObservations = 4
	cfg.Profiles = []string{ProfileGravityRender, ProfileNoRender}

	// WHEN resolved
	profiles, err := cfg.ResolveProfiles()

	// THEN order is preserved and heavy profiles use the heavy threshold
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, Profile{Name: ProfileGravityRender, Render: true, Collision: true, Gravity: true, MinObservations: 4}, profiles[0])
	assert.Equal(t, Profile{Name: ProfileNoRender, MinObservations: 12}, profiles[1])
}

func TestDefaultProfiles_FlagsPerWorkload(t *testing.T) {
	profiles := DefaultProfiles()
	require.Len(t, profiles, 6)

	byName := make(map[string]Profile)
	for _, p := range profiles {
		byName[p.Name] = p
	}
	assert.False(t, byName[ProfileNoRender].Render || byName[ProfileNoRender].Collision)
	assert.True(t, byName[ProfileRender].Render)
	assert.True(t, byName[ProfileCollision].Collision)
	assert.True(t, byName[ProfileCollisionRender].Render && byName[ProfileCollisionRender].Collision)
	assert.True(t, byName[ProfileGravity].Heavy())
	assert.Equal(t, DefaultHeavyMinObservations, byName[ProfileGravityRender].MinObservations)
	assert.Equal(t, DefaultMinObservations, byName[ProfileCollision].MinObservations)
}
