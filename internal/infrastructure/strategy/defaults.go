package strategy

import (
	"github.com/stockledger/platform/internal/domain/shared/strategy"
	"github.com/stockledger/platform/internal/infrastructure/strategy/batch"
	"github.com/stockledger/platform/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults creates a new registry with default strategies registered
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	// Register cost strategies
	movingAvg := cost.NewMovingAverageCostStrategy()
	if err := r.RegisterCostStrategy(movingAvg); err != nil {
		return nil, err
	}

	fifoCost := cost.NewFIFOCostStrategy()
	if err := r.RegisterCostStrategy(fifoCost); err != nil {
		return nil, err
	}

	// Register batch strategies
	standardBatch := batch.NewStandardBatchStrategy()
	if err := r.RegisterBatchStrategy(standardBatch); err != nil {
		return nil, err
	}

	// Set defaults
	if err := r.SetDefault(strategy.StrategyTypeCost, movingAvg.Name()); err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.StrategyTypeBatch, standardBatch.Name()); err != nil {
		return nil, err
	}

	return r, nil
}
