package warehouse

import (
	"context"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
)

// PutawayService assembles candidate locations and active putaway rules for
// a tenant/warehouse and asks the domain-level PutawayAdvisor to rank them
// (§4.G). It owns nothing beyond the repository fetches; all scoring logic
// stays in internal/domain/warehouse.
type PutawayService struct {
	locationRepo warehouse.WarehouseLocationRepository
	zoneRepo     warehouse.WarehouseZoneRepository
	ruleRepo     warehouse.PutawayRuleRepository
	advisor      *warehouse.PutawayAdvisor
}

// NewPutawayService creates a new PutawayService.
func NewPutawayService(
	locationRepo warehouse.WarehouseLocationRepository,
	zoneRepo warehouse.WarehouseZoneRepository,
	ruleRepo warehouse.PutawayRuleRepository,
) *PutawayService {
	return &PutawayService{
		locationRepo: locationRepo,
		zoneRepo:     zoneRepo,
		ruleRepo:     ruleRepo,
		advisor:      warehouse.NewPutawayAdvisor(),
	}
}

// Suggest ranks every location in warehouseID as a putaway candidate for
// quantity units of productID, honoring the tenant's active putaway rules.
func (s *PutawayService) Suggest(
	ctx context.Context,
	tenantID, warehouseID, productID uuid.UUID,
	quantity int64,
	preferredType warehouse.LocationType,
) ([]warehouse.ScoredCandidate, error) {
	locations, err := s.locationRepo.FindByWarehouse(ctx, tenantID, warehouseID, warehouse.WarehouseLocationFilter{
		Filter: shared.Filter{Page: 1, PageSize: 0},
	})
	if err != nil {
		return nil, err
	}

	rules, err := s.ruleRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	zoneCodes, err := s.zoneCodesByID(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	candidates := make([]warehouse.PutawayCandidate, len(locations))
	for i, loc := range locations {
		zoneCode := ""
		if loc.ZoneID != nil {
			zoneCode = zoneCodes[*loc.ZoneID]
		}
		candidates[i] = warehouse.PutawayCandidate{
			LocationID:   loc.ID,
			LocationCode: loc.Code,
			ZoneCode:     zoneCode,
			Aisle:        loc.Aisle,
			Type:         loc.Type,
			Capacity:     loc.Capacity,
			CurrentStock: loc.CurrentStock,
		}
	}

	return s.advisor.Rank(productID, warehouseID, quantity, preferredType, rules, candidates), nil
}

func (s *PutawayService) zoneCodesByID(ctx context.Context, tenantID, warehouseID uuid.UUID) (map[uuid.UUID]string, error) {
	zones, err := s.zoneRepo.FindByWarehouse(ctx, tenantID, warehouseID, shared.Filter{Page: 1, PageSize: 0})
	if err != nil {
		return nil, err
	}
	codes := make(map[uuid.UUID]string, len(zones))
	for _, z := range zones {
		codes[z.ID] = z.Code
	}
	return codes, nil
}
