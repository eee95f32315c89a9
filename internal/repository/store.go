package repository

import "context"

// Store bundles every repository behind one backend
type Store interface {
	HarvestRepository
	RuleStore
	MemberRepository
	AllocationRepository
	ClaimRepository

	Ping(ctx context.Context) error
	Close()
}
