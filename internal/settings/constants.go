package settings

// DB config keys and defaults for the rental pricing policy. Defaults match
// the rates the service launched with; operators adjust them via the admin API.
const (
	// MinBalanceShortKey is the minimum wallet balance for plans up to the
	// short-plan cutoff.
	MinBalanceShortKey = "MIN_BALANCE_SHORT"
	// MinBalanceLongKey is the minimum wallet balance for longer plans.
	MinBalanceLongKey = "MIN_BALANCE_LONG"
	// ShortPlanMaxMinutesKey is the duration cutoff between the two
	// minimum-balance tiers.
	ShortPlanMaxMinutesKey = "SHORT_PLAN_MAX_MINUTES"
	// PenaltyPerMinuteKey is the overdue penalty rate.
	PenaltyPerMinuteKey = "PENALTY_PER_MINUTE"
	// GraceMinutesKey is the overdue grace period.
	GraceMinutesKey = "GRACE_MINUTES"

	// DefaultMinBalanceShort is the fallback short-plan minimum balance.
	DefaultMinBalanceShort = 55.0
	// DefaultMinBalanceLong is the fallback long-plan minimum balance.
	DefaultMinBalanceLong = 100.0
	// DefaultShortPlanMaxMinutes is the fallback tier cutoff.
	DefaultShortPlanMaxMinutes = 60
	// DefaultPenaltyPerMinute is the fallback penalty rate.
	DefaultPenaltyPerMinute = 5.0
	// DefaultGraceMinutes is the fallback grace period.
	DefaultGraceMinutes = 5
)
