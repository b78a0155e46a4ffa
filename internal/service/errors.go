package service

import "errors"

// Common service errors. Expected conditions surface as sentinels so callers
// can check them with errors.Is; the API layer maps them to HTTP statuses.
var (
	// ErrVariantUnavailable indicates that no service variant is wired for a
	// resolved API version. The version registry and the host wiring are out
	// of step, which is an operator problem, so the API layer maps this to a
	// 500 rather than a client error.
	ErrVariantUnavailable = errors.New("no service variant for api version")
)

// Business rule identifiers carried by domain.BusinessRuleError values
// raised in this package. The identifiers are stable; messages are free to
// change.
const (
	RuleStatusTransition  = "status_transition"
	RuleScheduleOrder     = "schedule_order"
	RuleUnitImmutable     = "unit_immutable"
	RulePriorityFrozen    = "priority_frozen"
	RuleOrderNotShippable = "order_not_shippable"
)
