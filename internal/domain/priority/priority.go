package priority

// Mode is the inferred user priority that biases the price-value component of ranking.
type Mode string

// Priority mode constants.
const (
	Quality          Mode = "QUALITY"
	PricePerformance Mode = "PRICE_PERFORMANCE"
	Budget           Mode = "BUDGET"
	// SpecialFeature is ranked like PricePerformance.
	SpecialFeature Mode = "SPECIAL_FEATURE"
)

// Default is used whenever no richer signal is available.
const Default = PricePerformance

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Quality || m == PricePerformance || m == Budget || m == SpecialFeature
}

// OrDefault returns m, or Default when m is not a supported value.
func (m Mode) OrDefault() Mode {
	if m.IsValid() {
		return m
	}
	return Default
}
