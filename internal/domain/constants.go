package domain

// Claim window in days per pool type, counted from the allocation time
const (
	ClaimWindowMemberDays   = 14 // investor, volunteer, plot_holder
	ClaimWindowCommunalDays = 7
	ClaimWindowMarketDays   = 0 // open_market, donation
	ClaimWindowDefaultDays  = 7
)

// Decimal places persisted for quantities and money
const (
	QuantityPlaces = 4
	MoneyPlaces    = 2
)
