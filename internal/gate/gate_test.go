package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsegate/signal-service/internal/models"
)

func TestDecide(t *testing.T) {
	assert.False(t, Decide(72, 100))
	assert.True(t, Decide(120, 100))
	assert.True(t, Decide(100, 100), "reading at threshold passes")
}

func TestHysteresisStaysInsideBand(t *testing.T) {
	h := NewHysteresis(15)
	// readings inside [threshold-margin, threshold+margin] never change state
	for _, r := range []float64{100, 85, 115, 99.9, 110, 90} {
		assert.Equal(t, models.IndicatorLocked, h.Step(r, 100))
	}
}

func TestHysteresisUnlockAndHold(t *testing.T) {
	h := NewHysteresis(15)
	assert.Equal(t, models.IndicatorUnlocked, h.Step(116, 100), "crossing threshold+margin unlocks")
	// a reading at exactly the threshold keeps the unlocked state
	assert.Equal(t, models.IndicatorUnlocked, h.Step(100, 100))
	assert.Equal(t, models.IndicatorUnlocked, h.Step(86, 100), "in-band readings hold the state")
	assert.Equal(t, models.IndicatorLocked, h.Step(84, 100), "crossing threshold-margin relocks")
}

func TestHysteresisBoundaryIsExclusive(t *testing.T) {
	h := NewHysteresis(15)
	assert.Equal(t, models.IndicatorLocked, h.Step(115, 100), "exactly threshold+margin is still in-band")
	h.State = models.IndicatorUnlocked
	assert.Equal(t, models.IndicatorUnlocked, h.Step(85, 100), "exactly threshold-margin is still in-band")
}

func TestHysteresisIsGenuineState(t *testing.T) {
	// the same reading yields different indicators depending on history:
	// recomputation from the latest value alone would flap
	locked := NewHysteresis(15)
	unlocked := NewHysteresis(15)
	unlocked.Step(120, 100)

	assert.Equal(t, models.IndicatorLocked, locked.Step(100, 100))
	assert.Equal(t, models.IndicatorUnlocked, unlocked.Step(100, 100))
}
