package models

// Charge is the commission price for one processing type, for example
// "STANDARD_ACH" or "SAME_DAY_ACH". The charges table is operator
// maintained and read fresh on every charged operation.
type Charge struct {
	// Type is the processing type this price applies to.
	Type string

	// Price is the commission amount in currency-of-record units.
	Price float64
}
