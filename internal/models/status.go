package models

// TargetStatus — enrollment state of a gate target
type TargetStatus string

const (
	TargetActive      TargetStatus = "Active"
	TargetDeactivated TargetStatus = "Deactivated"
)

// IndicatorState — hysteresis state of the client-side indicator
type IndicatorState string

const (
	IndicatorLocked   IndicatorState = "Locked"
	IndicatorUnlocked IndicatorState = "Unlocked"
)
