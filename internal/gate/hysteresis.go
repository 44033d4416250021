package gate

import "github.com/pulsegate/signal-service/internal/models"

// DefaultMargin is the buffer around the threshold that keeps the indicator
// from flapping when the live reading sits at the boundary.
const DefaultMargin = 15

// Hysteresis is a two-state machine {Locked, Unlocked}, initial Locked.
// Readings inside [threshold-margin, threshold+margin] never change state;
// the state itself must be kept, not recomputed from the latest value.
type Hysteresis struct {
	State  models.IndicatorState
	Margin float64
}

func NewHysteresis(margin float64) Hysteresis {
	return Hysteresis{State: models.IndicatorLocked, Margin: margin}
}

// Step feeds one reading through the machine and returns the resulting state.
func (h *Hysteresis) Step(reading, threshold float64) models.IndicatorState {
	switch h.State {
	case models.IndicatorLocked:
		if reading > threshold+h.Margin {
			h.State = models.IndicatorUnlocked
		}
	case models.IndicatorUnlocked:
		if reading < threshold-h.Margin {
			h.State = models.IndicatorLocked
		}
	default:
		h.State = models.IndicatorLocked
	}
	return h.State
}
