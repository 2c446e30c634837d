package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/capbench/bench/internal/testutil"
	"github.com/inference-sim/capbench/bench/trace"
)

func newTestController(t *testing.T, cfg Config, profile string) (*Controller, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	c := NewController(host, cfg)
	p, err := LookupProfile(profile, cfg.MinObservations, cfg.HeavyMinObservations)
	require.NoError(t, err)
	c.Begin(p)
	return c, host
}

func TestController_AboveTarget_GrowsAndRecordsKnownGood(t *testing.T) {
	// GIVEN a fresh NoRender controller
	c, host := newTestController(t, testConfig(), ProfileNoRender)

	// WHEN two evaluations meet the target
	assert.Equal(t, trace.DecisionGrow, c.Evaluate(100))
	assert.Equal(t, trace.DecisionGrow, c.Evaluate(90))

	// THEN the last known-good count is the count under test at the second one
	st := c.State()
	assert.Equal(t, 1000, st.LastKnownGood)
	assert.Equal(t, 2000, st.EntityCount)
	assert.Equal(t, 2000, len(host.live))
	assert.True(t, st.IgnoreNext, "population change must discard the next tick")
	assert.Len(t, c.Results(), 2)
}

func TestController_InconclusiveBand_GrowsWithoutMovingKnownGood(t *testing.T) {
	c, host := newTestController(t, testConfig(), ProfileNoRender)
	c.Evaluate(100) // known good at 0

	// WHEN fps lands between the thresholds (both inclusive)
	assert.Equal(t, trace.DecisionHold, c.Evaluate(45))
	assert.Equal(t, trace.DecisionHold, c.Evaluate(59))
	assert.Equal(t, trace.DecisionHold, c.Evaluate(30))

	// THEN the population keeps growing but known good stays put
	st := c.State()
	assert.Equal(t, 0, st.LastKnownGood)
	assert.Equal(t, 4000, st.EntityCount)
	assert.Equal(t, 4000, len(host.live))
	assert.Len(t, c.Results(), 4, "inconclusive evaluations are still observations")
}

func TestController_Overload_HalvesStepAndRestartsBelowKnownGood(t *testing.T) {
	// GIVEN known good at 2000 and 3000 entities under test
	c, host := newTestController(t, testConfig(), ProfileRender)
	c.Evaluate(100)
	c.Evaluate(100)
	c.Evaluate(100)
	require.Equal(t, 3000, c.State().EntityCount)
	createdBefore := host.created

	// WHEN the rate collapses
	decision := c.Evaluate(20)

	// THEN a refinement round starts from 2000-500 with half the step
	assert.Equal(t, trace.DecisionBackoff, decision)
	st := c.State()
	assert.Equal(t, 500, st.StepSize)
	assert.Equal(t, 2000, st.LastKnownGood)
	assert.Equal(t, 1500, st.EntityCount)
	assert.Equal(t, 1500, len(host.live))
	assert.Equal(t, 3000, host.destroyed, "all previous entities are erased")
	assert.Equal(t, createdBefore+1500, host.created)
	assert.Empty(t, c.Results(), "observations restart with the round")

	// AND new entities carry the profile's flags
	for _, e := range host.live {
		assert.True(t, e.render)
		assert.False(t, e.collision)
	}
}

func TestController_BackoffTarget_ClampsAtZero(t *testing.T) {
	// GIVEN overload before any count met the target
	c, host := newTestController(t, testConfig(), ProfileNoRender)
	c.Evaluate(45) // hold at 0 -> 1000

	// WHEN overload hits
	c.Evaluate(10)

	// THEN the backoff point clamps to zero instead of going negative
	st := c.State()
	assert.Equal(t, 0, st.EntityCount)
	assert.Equal(t, 500, st.StepSize)
	assert.Empty(t, host.live)
}

func TestController_OverloadAtStepOne_Finalizes(t *testing.T) {
	// GIVEN the smallest possible step
	cfg := testConfig()
	cfg.InitialStep = 1
	c, _ := newTestController(t, cfg, ProfileNoRender)
	c.Evaluate(100)

	// WHEN overload arrives with few observations
	decision := c.Evaluate(10)

	// THEN halving would reach zero, so the profile converges
	assert.Equal(t, trace.DecisionFinalize, decision)
	assert.Equal(t, 1, c.State().StepSize)
}

func TestController_EnoughObservations_Finalizes(t *testing.T) {
	c, _ := newTestController(t, testConfig(), ProfileCollision)
	for i := 0; i < DefaultMinObservations-1; i++ {
		require.Equal(t, trace.DecisionGrow, c.Evaluate(100))
	}
	assert.Equal(t, trace.DecisionFinalize, c.Evaluate(10), "30th observation is the overload")
}

func TestController_HeavyProfile_UsesSettleDelayAndLowerThreshold(t *testing.T) {
	c, host := newTestController(t, testConfig(), ProfileGravity)

	// WHEN the population grows
	c.Evaluate(100)

	// THEN sampling waits for motion to settle
	assert.Equal(t, DefaultSettleDelay, c.State().SettleRemaining)
	for _, e := range host.live {
		assert.True(t, e.collision, "gravity entities carry a collision shape")
	}

	// AND ten observations are enough to converge
	for i := 0; i < DefaultHeavyMinObservations-2; i++ {
		c.Evaluate(100)
	}
	assert.Equal(t, trace.DecisionFinalize, c.Evaluate(10))
}

func TestController_LightProfile_NeverSettles(t *testing.T) {
	c, _ := newTestController(t, testConfig(), ProfileCollisionRender)
	c.Evaluate(100)
	c.Evaluate(10)
	assert.Zero(t, c.State().SettleRemaining)
}

func TestController_ConsumeTick_IgnoreThenSettle(t *testing.T) {
	c, _ := newTestController(t, testConfig(), ProfileGravity)
	c.Evaluate(100) // IgnoreNext + 2s settle

	assert.False(t, c.consumeTick(0.5), "first tick after a change is discarded")
	assert.False(t, c.consumeTick(1.0))
	assert.False(t, c.consumeTick(1.0))
	assert.True(t, c.consumeTick(1.0), "settle delay elapsed")
}

func TestController_StepNeverIncreasesAndCountsStayNonNegative(t *testing.T) {
	// GIVEN non-increasing fps functions of the entity count
	models := map[string]testutil.FPSModel{
		"cliff at 777":   testutil.CliffFPS(777, 100, 10),
		"cliff below 0":  testutil.CliffFPS(-1, 100, 10),
		"linear":         testutil.LinearFPS(120, 100),
		"steep linear":   testutil.LinearFPS(200, 3),
		"cliff at 12345": testutil.CliffFPS(12345, 61, 29),
	}
	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			c, host := newTestController(t, testConfig(), ProfileNoRender)

			lastStep := c.State().StepSize
			for evals := 0; ; evals++ {
				require.Less(t, evals, 100000, "profile did not converge")
				before := c.State()
				decision := c.Evaluate(model(before.EntityCount))
				st := c.State()

				// THEN counts never go negative
				require.GreaterOrEqual(t, st.EntityCount, 0)
				require.GreaterOrEqual(t, st.LastKnownGood, 0)
				require.Equal(t, st.EntityCount, len(host.live))

				switch decision {
				case trace.DecisionBackoff:
					// AND each overload strictly shrinks the step, floor 1
					require.Less(t, st.StepSize, lastStep)
					require.GreaterOrEqual(t, st.StepSize, 1)
					require.GreaterOrEqual(t, st.EntityCount, 0)
					lastStep = st.StepSize
				case trace.DecisionFinalize:
					return
				default:
					require.Equal(t, lastStep, st.StepSize, "growth never changes the step")
				}
			}
		})
	}
}
