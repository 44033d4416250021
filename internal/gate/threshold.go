// Package gate holds the two gating disciplines: the stateless threshold rule
// carried inside signed payloads, and the stateful hysteresis indicator used
// only for client display.
package gate

// Decide is the threshold rule used by the signed-token path. Stateless on
// purpose: the verifier trusts the carried decision, so no prior state may
// leak into it.
func Decide(reading, threshold float64) bool {
	return reading >= threshold
}
