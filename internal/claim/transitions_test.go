package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

func TestCanTransition(t *testing.T) {
	all := []domain.ClaimStatus{
		domain.ClaimPending, domain.ClaimReady, domain.ClaimPickedUp, domain.ClaimDelivered,
		domain.ClaimExpired, domain.ClaimForfeited, domain.ClaimRedistributed,
	}
	allowed := map[[2]domain.ClaimStatus]bool{
		{domain.ClaimPending, domain.ClaimReady}:           true,
		{domain.ClaimPending, domain.ClaimExpired}:         true,
		{domain.ClaimPending, domain.ClaimForfeited}:       true,
		{domain.ClaimReady, domain.ClaimPickedUp}:          true,
		{domain.ClaimReady, domain.ClaimDelivered}:         true,
		{domain.ClaimReady, domain.ClaimExpired}:           true,
		{domain.ClaimReady, domain.ClaimForfeited}:         true,
		{domain.ClaimExpired, domain.ClaimRedistributed}:   true,
		{domain.ClaimForfeited, domain.ClaimRedistributed}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]domain.ClaimStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
