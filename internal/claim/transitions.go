package claim

import "github.com/osse101/HarvestShare_Go/internal/domain"

// claimTransitions lists the statuses each claim status may move to
var claimTransitions = map[domain.ClaimStatus][]domain.ClaimStatus{
	domain.ClaimPending:   {domain.ClaimReady, domain.ClaimExpired, domain.ClaimForfeited},
	domain.ClaimReady:     {domain.ClaimPickedUp, domain.ClaimDelivered, domain.ClaimExpired, domain.ClaimForfeited},
	domain.ClaimExpired:   {domain.ClaimRedistributed},
	domain.ClaimForfeited: {domain.ClaimRedistributed},
}

// CanTransition reports whether a claim may move from one status to another
func CanTransition(from, to domain.ClaimStatus) bool {
	for _, allowed := range claimTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
