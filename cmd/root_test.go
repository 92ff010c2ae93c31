package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/deepspace-sim/deepspace-sim/sim"
)

// loadFixtureSim returns a running Sim for the skirmish fixture.
func loadFixtureSim(t *testing.T) *sim.Sim {
	t.Helper()
	m, err := sim.LoadMissionFile(skirmishFixture)
	require.NoError(t, err)
	catalog, err := m.BuildCatalog()
	require.NoError(t, err)
	s := sim.NewSim(sim.Config{Catalog: catalog, Seed: m.Seed, Clock: sim.NewManualClock(time.Unix(0, 0))})
	require.NoError(t, s.LoadMission(m))
	require.NoError(t, s.ExecMission())
	return s
}

func setFrames(t *testing.T, n int, dt float64) {
	t.Helper()
	oldFrames, oldStep := frames, frameStep
	frames, frameStep = n, dt
	t.Cleanup(func() { frames, frameStep = oldFrames, oldStep })
}

func TestRunFrames_ManualClockAdvancesPerFrame(t *testing.T) {
	// GIVEN 30 frames of 0.1s on the frame clock
	setFrames(t, 30, 0.1)
	s := loadFixtureSim(t)
	clock := sim.NewManualClock(time.Unix(0, 0))

	// WHEN the frames run
	runFrames(context.Background(), s, clock)

	// THEN every frame executed and the clock moved with them
	assert.Equal(t, int64(30), s.Frame())
	assert.InDelta(t, 3.0, s.Elapsed(), 1e-9)
	assert.Equal(t, time.Unix(3, 0), clock.Now())
}

func TestRunFrames_CancelledContextStops(t *testing.T) {
	setFrames(t, 30, 0.1)
	s := loadFixtureSim(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runFrames(ctx, s, sim.NewManualClock(time.Unix(0, 0)))

	assert.Equal(t, int64(0), s.Frame())
}

func TestRunCmd_FlagDefaults(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"frames", "600"},
		{"seed", "42"},
		{"trace", "none"},
		{"clock", "frame"},
		{"metrics-addr", ""},
	}
	for _, tt := range tests {
		f := runCmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "flag --%s", tt.flag)
		assert.Equal(t, tt.want, f.DefValue, "flag --%s", tt.flag)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log"))
	assert.True(t, validClockModes["wall"])
	assert.False(t, validClockModes["tick"])
}
