package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/bootstrap"
	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/utils"
)

// openServices builds the services over the configured store without an event bus
func openServices(ctx context.Context) (*bootstrap.Services, repository.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	services := bootstrap.InitializeServices(cfg, store, nil)
	if err := bootstrap.SeedStore(ctx, cfg, store, services); err != nil {
		store.Close()
		return nil, nil, err
	}
	return services, store, nil
}

type PreviewCommand struct{}

func (c *PreviewCommand) Name() string {
	return "preview"
}

func (c *PreviewCommand) Description() string {
	return "Show the pool and member distribution of a harvest without allocating"
}

func (c *PreviewCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: preview <harvest-id>")
	}
	services, store, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	dist, err := services.Allocation.PreviewDistribution(ctx, args[0])
	if err != nil {
		return err
	}
	PrintHeader("Pools")
	for _, line := range poolLines(dist.Pools) {
		fmt.Println(line)
	}
	return PrintJSON(dist)
}

// poolLines formats one line per pool followed by a total line
func poolLines(pools []domain.PoolAmount) []string {
	lines := make([]string, 0, len(pools)+1)
	amounts := make([]decimal.Decimal, 0, len(pools))
	for _, p := range pools {
		lines = append(lines, fmt.Sprintf("%-14s %6s%% %12s", p.PoolType.DisplayName(), p.Percentage.String(), p.Amount.StringFixed(domain.MoneyPlaces)))
		amounts = append(amounts, p.Amount)
	}
	lines = append(lines, fmt.Sprintf("%-14s %7s %12s", "Total", "", utils.SumDecimals(amounts...).StringFixed(domain.MoneyPlaces)))
	return lines
}

type AllocateCommand struct{}

func (c *AllocateCommand) Name() string {
	return "allocate"
}

func (c *AllocateCommand) Description() string {
	return "Allocate a pending harvest into its pools"
}

func (c *AllocateCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: allocate <harvest-id>")
	}
	services, store, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := services.Allocation.AllocateHarvest(ctx, args[0])
	if err != nil {
		return err
	}
	PrintSuccess("Created %d allocations", result.AllocationCount)
	return PrintJSON(result)
}

type SweepCommand struct{}

func (c *SweepCommand) Name() string {
	return "sweep"
}

func (c *SweepCommand) Description() string {
	return "Run one expiry sweep now"
}

func (c *SweepCommand) Run(ctx context.Context, args []string) error {
	services, store, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	defer func() { _ = services.ExpiryWorker.Shutdown(ctx) }()

	result, err := services.ExpiryWorker.Sweep(ctx)
	if err != nil {
		return err
	}
	PrintSuccess("Expired %d allocations, completed %d harvests", result.Expired, result.Completed)
	return nil
}

type ClaimCommand struct{}

func (c *ClaimCommand) Name() string {
	return "claim"
}

func (c *ClaimCommand) Description() string {
	return "Claim a quantity from an open allocation for a member"
}

func (c *ClaimCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: claim <harvest-id> <allocation-id> <customer-id> <quantity> [membership-id]")
	}
	quantity, err := decimal.NewFromString(args[3])
	if err != nil {
		return fmt.Errorf("%w: quantity %q: %v", domain.ErrInvalidInput, args[3], err)
	}
	req := domain.ClaimRequest{
		HarvestID:         args[0],
		AllocationID:      args[1],
		CustomerID:        args[2],
		QuantityRequested: quantity,
	}
	if len(args) > 4 {
		req.MembershipID = args[4]
	}

	services, store, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := services.Claim.ClaimHarvestShare(ctx, req)
	if err != nil {
		return err
	}
	PrintSuccess("Claimed %s (value %s), %s remaining",
		result.QuantityClaimed.String(), result.ValueClaimed.StringFixed(domain.MoneyPlaces), result.RemainingQuantity.String())
	return PrintJSON(result)
}

type UnclaimCommand struct{}

func (c *UnclaimCommand) Name() string {
	return "unclaim"
}

func (c *UnclaimCommand) Description() string {
	return "Delete a claim and return its quantity to the allocation"
}

func (c *UnclaimCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: unclaim <claim-id>")
	}
	services, store, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	claim, err := store.GetClaim(ctx, args[0])
	if err != nil {
		return err
	}
	err = services.Claim.CompensateClaim(ctx, &domain.ClaimResult{
		ClaimID:         claim.ID,
		QuantityClaimed: claim.QuantityClaimed,
		ValueClaimed:    claim.ValueClaimed,
		AllocationID:    claim.AllocationID,
	})
	if err != nil {
		return err
	}
	PrintSuccess("Released %s back to allocation %s", claim.QuantityClaimed.String(), claim.AllocationID)
	return nil
}
