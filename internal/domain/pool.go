package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PoolType names a stakeholder category receiving a share of a harvest
type PoolType string

const (
	PoolInvestor   PoolType = "investor"
	PoolVolunteer  PoolType = "volunteer"
	PoolPlotHolder PoolType = "plot_holder"
	PoolCommunal   PoolType = "communal"
	PoolOpenMarket PoolType = "open_market"
	PoolDonation   PoolType = "donation"
	PoolSeedSaving PoolType = "seed_saving"
	PoolReserved   PoolType = "reserved"
)

var knownPools = map[PoolType]bool{
	PoolInvestor:   true,
	PoolVolunteer:  true,
	PoolPlotHolder: true,
	PoolCommunal:   true,
	PoolOpenMarket: true,
	PoolDonation:   true,
	PoolSeedSaving: true,
	PoolReserved:   true,
}

// IsKnown reports whether p is one of the recognised pool types
func (p PoolType) IsKnown() bool {
	return knownPools[p]
}

// IsMemberDistributed reports whether the pool's value is split among members.
// Open market and donation pools are reported in the summary only.
func (p PoolType) IsMemberDistributed() bool {
	return p != PoolOpenMarket && p != PoolDonation
}

// DisplayName returns a human label, e.g. "Plot Holder"
func (p PoolType) DisplayName() string {
	// a Caser keeps state and must not be shared between goroutines
	return cases.Title(language.English).String(strings.ReplaceAll(string(p), "_", " "))
}

// QualityGrade is the graded quality of a harvest
type QualityGrade string

const (
	GradePremium    QualityGrade = "premium"
	GradeStandard   QualityGrade = "standard"
	GradeSeconds    QualityGrade = "seconds"
	GradeProcessing QualityGrade = "processing"
)
