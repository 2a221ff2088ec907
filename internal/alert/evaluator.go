// Package alert classifies account balances against configured thresholds
// and drives best-effort holder notifications, both after individual ledger
// operations and from a periodic background scan.
package alert

// Level is the health classification of a balance.
type Level string

const (
	LevelHealthy  Level = "HEALTHY"
	LevelLow      Level = "LOW"
	LevelCritical Level = "CRITICAL"
)

// Evaluator is a stateless balance classification policy. Critical must be
// below Low; the critical check always wins.
type Evaluator struct {
	Low      int64
	Critical int64
}

// Classify returns the level for a balance, checking the critical threshold
// first.
func (e Evaluator) Classify(balance int64) Level {
	switch {
	case balance < e.Critical:
		return LevelCritical
	case balance < e.Low:
		return LevelLow
	default:
		return LevelHealthy
	}
}

// Threshold returns the threshold that was crossed for a non-healthy level.
func (e Evaluator) Threshold(level Level) int64 {
	if level == LevelCritical {
		return e.Critical
	}
	return e.Low
}
