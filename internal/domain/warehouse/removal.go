package warehouse

import (
	"sort"
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// RemovalStrategyType is the picking order a resolved strategy imposes on
// candidate stock locations (§4.H).
type RemovalStrategyType string

const (
	RemovalStrategyFIFO            RemovalStrategyType = "fifo"
	RemovalStrategyLIFO            RemovalStrategyType = "lifo"
	RemovalStrategyFEFO            RemovalStrategyType = "fefo"
	RemovalStrategyClosestLocation RemovalStrategyType = "closest_location"
	RemovalStrategyLeastPackages   RemovalStrategyType = "least_packages"
)

// RemovalStrategy is a declarative scope-to-strategy binding. Scope
// specificity, most to least specific: warehouse+product, warehouse,
// product, tenant-wide (both WarehouseID and ProductID nil).
type RemovalStrategy struct {
	shared.TenantAggregateRoot
	WarehouseID   *uuid.UUID
	ProductID     *uuid.UUID
	StrategyType  RemovalStrategyType
	PriorityScore int
	Active        bool
}

// NewRemovalStrategy creates a new active removal strategy binding.
func NewRemovalStrategy(tenantID uuid.UUID, strategyType RemovalStrategyType, priorityScore int) (*RemovalStrategy, error) {
	if priorityScore < 0 {
		return nil, shared.NewDomainError("INVALID_PRIORITY_SCORE", "Priority score cannot be negative")
	}
	switch strategyType {
	case RemovalStrategyFIFO, RemovalStrategyLIFO, RemovalStrategyFEFO, RemovalStrategyClosestLocation, RemovalStrategyLeastPackages:
	default:
		return nil, shared.NewDomainError("INVALID_STRATEGY_TYPE", "Unknown removal strategy type: "+string(strategyType))
	}
	return &RemovalStrategy{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StrategyType:        strategyType,
		PriorityScore:       priorityScore,
		Active:              true,
	}, nil
}

// specificity ranks a strategy's scope: 3 = warehouse+product (most
// specific), 2 = warehouse-only, 1 = product-only, 0 = tenant-wide.
func (s *RemovalStrategy) specificity(warehouseID, productID uuid.UUID) (int, bool) {
	matchesWarehouse := s.WarehouseID == nil || *s.WarehouseID == warehouseID
	matchesProduct := s.ProductID == nil || *s.ProductID == productID
	if !matchesWarehouse || !matchesProduct {
		return 0, false
	}
	switch {
	case s.WarehouseID != nil && s.ProductID != nil:
		return 3, true
	case s.WarehouseID != nil:
		return 2, true
	case s.ProductID != nil:
		return 1, true
	default:
		return 0, true
	}
}

// ResolveStrategy picks the strategy whose scope best matches
// (warehouseID, productID): most specific scope wins; ties broken by
// highest priority score, then earliest CreatedAt (§4.H). Returns nil if no
// active strategy matches.
func ResolveStrategy(warehouseID, productID uuid.UUID, strategies []RemovalStrategy) *RemovalStrategy {
	var best *RemovalStrategy
	bestSpecificity := -1

	for i := range strategies {
		s := &strategies[i]
		if !s.Active {
			continue
		}
		spec, ok := s.specificity(warehouseID, productID)
		if !ok {
			continue
		}
		if best == nil {
			best, bestSpecificity = s, spec
			continue
		}
		switch {
		case spec > bestSpecificity:
			best, bestSpecificity = s, spec
		case spec == bestSpecificity:
			if s.PriorityScore > best.PriorityScore {
				best = s
			} else if s.PriorityScore == best.PriorityScore && s.CreatedAt.Before(best.CreatedAt) {
				best = s
			}
		}
	}
	return best
}

// RemovalCandidate is one unit of residing stock available for picking at a
// location, carrying only the fields the ordering rules need.
type RemovalCandidate struct {
	LocationID        uuid.UUID
	LocationCode      string
	AvailableQuantity int64
	ReceiptTime       time.Time
	ExpiryDate        *time.Time
	Coordinates       *Coordinates
}

// RemovalPlanLine is one step of a fulfillment plan: pick SuggestedQuantity
// units from Location.
type RemovalPlanLine struct {
	Location          RemovalCandidate
	SuggestedQuantity int64
}

// RemovalPlan is the resolver's output: a sequence of plan lines summing to
// the demand, or less if total available was insufficient.
type RemovalPlan struct {
	Lines      []RemovalPlanLine
	CanFulfill bool
}

// manhattanDistance returns |dx| + |dy| from origin to c, treating a nil
// coordinate as infinitely far (sorted last).
func manhattanDistance(origin Coordinates, c *Coordinates) int {
	if c == nil {
		return int(^uint(0) >> 1) // math.MaxInt, without importing math for one constant
	}
	dx := c.X - origin.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - origin.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// orderCandidates sorts candidates in place per strategyType's picking
// order (§4.H).
func orderCandidates(strategyType RemovalStrategyType, origin Coordinates, candidates []RemovalCandidate) {
	switch strategyType {
	case RemovalStrategyFIFO:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ReceiptTime.Before(candidates[j].ReceiptTime)
		})
	case RemovalStrategyLIFO:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ReceiptTime.After(candidates[j].ReceiptTime)
		})
	case RemovalStrategyFEFO:
		sort.SliceStable(candidates, func(i, j int) bool {
			ei, ej := candidates[i].ExpiryDate, candidates[j].ExpiryDate
			switch {
			case ei == nil && ej == nil:
				return candidates[i].ReceiptTime.Before(candidates[j].ReceiptTime)
			case ei == nil:
				return false // nulls last
			case ej == nil:
				return true
			case ei.Equal(*ej):
				return candidates[i].ReceiptTime.Before(candidates[j].ReceiptTime)
			default:
				return ei.Before(*ej)
			}
		})
	case RemovalStrategyClosestLocation:
		sort.SliceStable(candidates, func(i, j int) bool {
			return manhattanDistance(origin, candidates[i].Coordinates) < manhattanDistance(origin, candidates[j].Coordinates)
		})
	case RemovalStrategyLeastPackages:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].AvailableQuantity > candidates[j].AvailableQuantity
		})
	}
}

// BuildPlan orders candidates per strategyType and greedily allocates
// demand across them, returning a plan that is partial (CanFulfill=false)
// if total available stock falls short.
func BuildPlan(strategyType RemovalStrategyType, origin Coordinates, demand int64, candidates []RemovalCandidate) RemovalPlan {
	ordered := make([]RemovalCandidate, len(candidates))
	copy(ordered, candidates)
	orderCandidates(strategyType, origin, ordered)

	plan := RemovalPlan{Lines: make([]RemovalPlanLine, 0, len(ordered))}
	remaining := demand
	for _, candidate := range ordered {
		if remaining <= 0 {
			break
		}
		if candidate.AvailableQuantity <= 0 {
			continue
		}
		take := candidate.AvailableQuantity
		if take > remaining {
			take = remaining
		}
		plan.Lines = append(plan.Lines, RemovalPlanLine{Location: candidate, SuggestedQuantity: take})
		remaining -= take
	}
	plan.CanFulfill = remaining == 0
	return plan
}
