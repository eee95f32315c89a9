// Package postgres implements every repository on PostgreSQL through pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/HarvestShare_Go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store bundles the PostgreSQL repositories over one pool
type Store struct {
	*HarvestRepository
	*RuleRepository
	*AllocationRepository
	*ClaimRepository

	pool *pgxpool.Pool
}

// NewStore creates a store over an open pool. The store owns the pool from here on.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		HarvestRepository:    NewHarvestRepository(pool),
		RuleRepository:       NewRuleRepository(pool),
		AllocationRepository: NewAllocationRepository(pool),
		ClaimRepository:      NewClaimRepository(pool),
		pool:                 pool,
	}
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() {
	s.pool.Close()
}
