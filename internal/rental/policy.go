package rental

import "github.com/volt-campus/VoltRentalAPI/internal/settings"

// Policy holds the pricing constants applied by the lifecycle engine. Values
// come from the DB-backed settings snapshot so operators can tune them without
// a deploy.
type Policy struct {
	MinBalanceShort     float64 // Minimum balance for plans up to ShortPlanMaxMinutes.
	MinBalanceLong      float64 // Minimum balance for longer plans.
	ShortPlanMaxMinutes int     // Duration cutoff between the two tiers.
	PenaltyPerMinute    float64 // Overdue penalty rate.
	GraceMinutes        int     // Overrun minutes absorbed without penalty.
}

// PolicyFromSettings reads the current policy from the settings snapshot.
func PolicyFromSettings() Policy {
	return Policy{
		MinBalanceShort:     settings.Float(settings.MinBalanceShortKey, settings.DefaultMinBalanceShort),
		MinBalanceLong:      settings.Float(settings.MinBalanceLongKey, settings.DefaultMinBalanceLong),
		ShortPlanMaxMinutes: settings.Int(settings.ShortPlanMaxMinutesKey, settings.DefaultShortPlanMaxMinutes),
		PenaltyPerMinute:    settings.Float(settings.PenaltyPerMinuteKey, settings.DefaultPenaltyPerMinute),
		GraceMinutes:        settings.Int(settings.GraceMinutesKey, settings.DefaultGraceMinutes),
	}
}

// RequiredMinBalance returns the minimum wallet balance for a plan duration.
// The higher tier protects long-plan users from being stranded by a penalty
// they cannot afford.
func (p Policy) RequiredMinBalance(durationMinutes int) float64 {
	if durationMinutes <= p.ShortPlanMaxMinutes {
		return p.MinBalanceShort
	}
	return p.MinBalanceLong
}
