package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

type stubCommand struct {
	name string
}

func (c *stubCommand) Name() string                            { return c.name }
func (c *stubCommand) Description() string                     { return "stub " + c.name }
func (c *stubCommand) Run(_ context.Context, _ []string) error { return nil }

func TestRegistry_GetAndList(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "sweep"})
	r.Register(&stubCommand{name: "allocate"})
	r.Register(&stubCommand{name: "migrate"})

	cmd, ok := r.Get("migrate")
	require.True(t, ok)
	assert.Equal(t, "migrate", cmd.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	var names []string
	for _, c := range r.List() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"allocate", "migrate", "sweep"}, names)
}

func TestCommands_RequireArguments(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cmd  Command
		want string
	}{
		{&MigrateCommand{}, "subcommand required"},
		{&SeedCommand{}, "usage: seed"},
		{&PreviewCommand{}, "usage: preview"},
		{&AllocateCommand{}, "usage: allocate"},
		{&ClaimCommand{}, "usage: claim"},
		{&UnclaimCommand{}, "usage: unclaim"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			err := tt.cmd.Run(ctx, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClaimCommand_RejectsBadQuantity(t *testing.T) {
	err := (&ClaimCommand{}).Run(context.Background(), []string{"h1", "a1", "c1", "ten"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, exitRejected, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitRejected, exitCode(fmt.Errorf("failed to load harvest: %w", domain.ErrHarvestNotFound)))
	assert.Equal(t, exitRejected, exitCode(&domain.InvalidStateError{Entity: "harvest", ID: "h1", Expected: "pending", Actual: "allocated"}))
	assert.Equal(t, exitFailure, exitCode(errors.New("connection refused")))
	assert.Equal(t, exitFailure, exitCode(domain.ErrConcurrentModification))
}

func TestPoolLines(t *testing.T) {
	lines := poolLines([]domain.PoolAmount{
		{PoolType: domain.PoolPlotHolder, Percentage: decimal.NewFromInt(30), Amount: decimal.RequireFromString("150")},
		{PoolType: domain.PoolOpenMarket, Percentage: decimal.NewFromInt(70), Amount: decimal.RequireFromString("350")},
	})

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Plot Holder")
	assert.Contains(t, lines[0], "30%")
	assert.Contains(t, lines[0], "150.00")
	assert.Contains(t, lines[1], "Open Market")
	assert.Contains(t, lines[2], "Total")
	assert.Contains(t, lines[2], "500.00")
}

func TestSeedCommand_CheckOnly(t *testing.T) {
	path := t.TempDir() + "/seed.json"
	require.NoError(t, writeFile(path, `{"rules": [{"garden_id": "g1", "pool_type": "communal", "percentage": 100}]}`))

	err := (&SeedCommand{}).Run(context.Background(), []string{path, "--check"})
	assert.NoError(t, err)
}

func TestSeedCommand_InvalidFile(t *testing.T) {
	path := t.TempDir() + "/seed.json"
	require.NoError(t, writeFile(path, `{"rules": [{"garden_id": "g1"}]}`))

	err := (&SeedCommand{}).Run(context.Background(), []string{path, "--check"})
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
