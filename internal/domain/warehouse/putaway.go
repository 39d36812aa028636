package warehouse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// PutawayRuleType selects what a rule matches against. Category and
// Attribute are declared extension points (§4.G step 3): they're valid
// values a rule may carry, but MatchesProduct gives them an empty default
// implementation pending a catalog/attribute lookup this substrate doesn't
// own.
type PutawayRuleType string

const (
	PutawayRuleTypeProduct   PutawayRuleType = "product"
	PutawayRuleTypeFIFO      PutawayRuleType = "fifo"
	PutawayRuleTypeFEFO      PutawayRuleType = "fefo"
	PutawayRuleTypeCategory  PutawayRuleType = "category"
	PutawayRuleTypeAttribute PutawayRuleType = "attribute"
)

// MatchMode is how a rule's location preferences are tested against a
// candidate location's fields.
type MatchMode string

const (
	MatchModeExact    MatchMode = "exact"
	MatchModeContains MatchMode = "contains"
	MatchModeRegex    MatchMode = "regex"
)

// LocationPreference is one (field, pattern) pair a rule tests a candidate
// location against. Field is one of "zone", "aisle", "type".
type LocationPreference struct {
	Field   string
	Pattern string
}

// PutawayRule is a declarative scoring input for the Putaway Advisor.
type PutawayRule struct {
	shared.TenantAggregateRoot
	RuleType      PutawayRuleType
	ProductID     *uuid.UUID // set when RuleType == PutawayRuleTypeProduct
	WarehouseID   *uuid.UUID // nil means tenant-wide scope
	MatchMode     MatchMode
	Preferences   []LocationPreference
	MinQuantity   *int64
	MaxQuantity   *int64
	PriorityScore int
	Active        bool
}

// NewPutawayRule creates a new active putaway rule.
func NewPutawayRule(tenantID uuid.UUID, ruleType PutawayRuleType, matchMode MatchMode, priorityScore int) (*PutawayRule, error) {
	if priorityScore < 0 {
		return nil, shared.NewDomainError("INVALID_PRIORITY_SCORE", "Priority score cannot be negative")
	}
	return &PutawayRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RuleType:            ruleType,
		MatchMode:           matchMode,
		PriorityScore:       priorityScore,
		Active:              true,
	}, nil
}

// matchesProduct reports whether this rule's scope admits the given product
// (§4.G step 3).
func (r *PutawayRule) matchesProduct(productID uuid.UUID) bool {
	switch r.RuleType {
	case PutawayRuleTypeProduct:
		return r.ProductID != nil && *r.ProductID == productID
	case PutawayRuleTypeFIFO, PutawayRuleTypeFEFO:
		return true // universal rules apply to every product
	case PutawayRuleTypeCategory, PutawayRuleTypeAttribute:
		// Declared extension point: no catalog/attribute lookup is owned by
		// this substrate, so these rule types never match.
		return false
	default:
		return false
	}
}

// matchesWarehouse reports whether this rule's warehouse scope covers
// candidateWarehouseID.
func (r *PutawayRule) matchesWarehouse(candidateWarehouseID uuid.UUID) bool {
	return r.WarehouseID == nil || *r.WarehouseID == candidateWarehouseID
}

// withinQuantityBounds reports whether quantity respects the rule's
// min/max bounds, if set. A violation disqualifies the rule entirely
// (score contribution 0, never negative).
func (r *PutawayRule) withinQuantityBounds(quantity int64) bool {
	if r.MinQuantity != nil && quantity < *r.MinQuantity {
		return false
	}
	if r.MaxQuantity != nil && quantity > *r.MaxQuantity {
		return false
	}
	return true
}

// matchPreference tests a single preference against a candidate field value
// using the rule's match mode.
func matchPreference(mode MatchMode, pattern, value string) bool {
	switch mode {
	case MatchModeExact:
		return pattern == value
	case MatchModeContains:
		return strings.Contains(value, pattern)
	case MatchModeRegex:
		anchored := "^(?:" + pattern + ")$"
		matched, err := regexp.MatchString(anchored, value)
		return err == nil && matched
	default:
		return false
	}
}

// score returns the rule's contribution to a candidate location's score, or
// 0 if the rule is disqualified or doesn't apply.
func (r *PutawayRule) score(productID, candidateWarehouseID uuid.UUID, quantity int64, candidate PutawayCandidate) int {
	if !r.Active {
		return 0
	}
	if !r.matchesProduct(productID) || !r.matchesWarehouse(candidateWarehouseID) {
		return 0
	}
	if !r.withinQuantityBounds(quantity) {
		return 0
	}

	total := 0
	for _, pref := range r.Preferences {
		var value string
		switch pref.Field {
		case "zone":
			value = candidate.ZoneCode
		case "aisle":
			value = candidate.Aisle
		case "type":
			value = string(candidate.Type)
		default:
			continue
		}
		if matchPreference(r.MatchMode, pref.Pattern, value) {
			total += r.PriorityScore
		}
	}
	return total
}

// PutawayCandidate is a storage slot offered to the advisor for scoring.
// It carries only the fields the scoring algorithm needs, decoupling the
// domain service from the WarehouseLocation persistence shape.
type PutawayCandidate struct {
	LocationID   uuid.UUID
	LocationCode string
	ZoneCode     string
	Aisle        string
	Type         LocationType
	Capacity     int64
	CurrentStock int64
}

// ScoredCandidate is a PutawayCandidate ranked by the advisor.
type ScoredCandidate struct {
	Candidate PutawayCandidate
	Score     int
}

const (
	utilizationHighThreshold     = 0.9
	utilizationModerateThreshold = 0.7
	utilizationHighPenalty       = 20
	utilizationModeratePenalty   = 10
	preferredTypeBonus           = 10
)

// PutawayAdvisor scores candidate locations against the active rule set
// (§4.G). It holds no persistence dependency: callers load the active
// rules and candidate locations and pass them in, keeping the scoring
// algorithm a pure function of its inputs.
type PutawayAdvisor struct{}

// NewPutawayAdvisor creates a new advisor.
func NewPutawayAdvisor() *PutawayAdvisor {
	return &PutawayAdvisor{}
}

// Rank scores every candidate that fits quantity against the active rules
// and returns them sorted by score descending, ties broken by location code
// ascending (§4.G steps 2-7).
func (a *PutawayAdvisor) Rank(productID, warehouseID uuid.UUID, quantity int64, preferredType LocationType, rules []PutawayRule, candidates []PutawayCandidate) []ScoredCandidate {
	ranked := make([]ScoredCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.CurrentStock+quantity > candidate.Capacity {
			continue // step 5: doesn't fit, drop it
		}

		score := 0
		for i := range rules {
			score += rules[i].score(productID, warehouseID, quantity, candidate)
		}

		utilization := 0.0
		if candidate.Capacity > 0 {
			utilization = float64(candidate.CurrentStock) / float64(candidate.Capacity)
		}
		switch {
		case utilization > utilizationHighThreshold:
			score -= utilizationHighPenalty
		case utilization > utilizationModerateThreshold:
			score -= utilizationModeratePenalty
		}

		if preferredType != "" && candidate.Type == preferredType {
			score += preferredTypeBonus
		}

		ranked = append(ranked, ScoredCandidate{Candidate: candidate, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Candidate.LocationCode < ranked[j].Candidate.LocationCode
	})

	return ranked
}
