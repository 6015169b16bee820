package pricing

import (
	"math"
	"strconv"
)

// Selections is the full set of user-chosen booking parameters fed to the
// quote engine. Room counts of zero and empty enum values simply contribute
// nothing; the booking layer gates quoting on the required fields being set.
type Selections struct {
	HomeSize     string   `json:"home_size"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	HalfBaths    int      `json:"half_baths"`
	CleaningType string   `json:"cleaning_type"`
	Frequency    string   `json:"frequency"`
	AddOns       []string `json:"add_ons,omitempty"`
}

// MissingRequired reports which of the required selection fields are unset.
// The quote engine itself never rejects input; callers gate on this.
func (s Selections) MissingRequired() []string {
	var missing []string
	if s.HomeSize == "" {
		missing = append(missing, "home_size")
	}
	if s.Bedrooms <= 0 {
		missing = append(missing, "bedrooms")
	}
	if s.Bathrooms <= 0 {
		missing = append(missing, "bathrooms")
	}
	return missing
}

// Quote is the computed price breakdown for one set of selections. All
// currency fields are rounded to two decimal places at each boundary.
// SubsequentVisitTotal and SavingsPerVisit are nil for one-time bookings:
// there is no second visit to price.
type Quote struct {
	BasePrice            float64  `json:"base_price"`
	BedroomCost          float64  `json:"bedroom_cost"`
	BathroomCost         float64  `json:"bathroom_cost"`
	HalfBathCost         float64  `json:"half_bath_cost"`
	AddOnsCost           float64  `json:"add_ons_cost"`
	Subtotal             float64  `json:"subtotal"`
	RecurringDiscount    float64  `json:"recurring_discount"`
	DiscountedSubtotal   float64  `json:"discounted_subtotal"`
	Tax                  float64  `json:"tax"`
	FirstVisitTotal      float64  `json:"first_visit_total"`
	SubsequentVisitTotal *float64 `json:"subsequent_visit_total,omitempty"`
	SavingsPerVisit      *float64 `json:"savings_per_visit,omitempty"`
}

// FirstVisitCents returns the first-visit total in minor currency units,
// the form the payment processor wants.
func (q Quote) FirstVisitCents() int64 {
	return int64(math.Round(q.FirstVisitTotal * 100))
}

// ComputeQuote maps selections through the table to a quote. It is pure and
// deterministic: no clock, no randomness, no side effects. Unknown keys
// contribute zero cost (identity multiplier, zero discount) rather than
// failing.
func ComputeQuote(sel Selections, tbl *Table) Quote {
	basePrice, _ := tbl.Lookup(CategoryHomeSize, sel.HomeSize)
	bedroomCost := lookupCount(tbl, CategoryBedrooms, sel.Bedrooms)
	bathroomCost := lookupCount(tbl, CategoryBathrooms, sel.Bathrooms)
	halfBathCost := lookupCount(tbl, CategoryHalfBaths, sel.HalfBaths)

	var addOnsCost float64
	seen := make(map[string]struct{}, len(sel.AddOns))
	for _, addOn := range sel.AddOns {
		if _, dup := seen[addOn]; dup {
			continue
		}
		seen[addOn] = struct{}{}
		v, _ := tbl.Lookup(CategoryAddOns, addOn)
		addOnsCost += v
	}

	roomSubtotal := basePrice + bedroomCost + bathroomCost + halfBathCost

	multiplier, ok := tbl.Lookup(CategoryCleaningType, sel.CleaningType)
	if !ok {
		multiplier = 1.0
	}

	// Add-ons land after the multiplier so each one shifts the subtotal by
	// exactly its tabulated price.
	subtotal := round2(round2(roomSubtotal*multiplier) + addOnsCost)
	firstVisitPrice := subtotal

	discountRate, _ := tbl.Lookup(CategoryFrequency, sel.Frequency)
	if discountRate < 0 || discountRate >= 1 {
		discountRate = 0
	}

	recurringDiscount := round2(subtotal * discountRate)
	discountedSubtotal := round2(subtotal - recurringDiscount)

	firstVisitTax := round2(firstVisitPrice * tbl.TaxRate())
	firstVisitTotal := round2(firstVisitPrice + firstVisitTax)

	q := Quote{
		BasePrice:          basePrice,
		BedroomCost:        bedroomCost,
		BathroomCost:       bathroomCost,
		HalfBathCost:       halfBathCost,
		AddOnsCost:         addOnsCost,
		Subtotal:           subtotal,
		RecurringDiscount:  recurringDiscount,
		DiscountedSubtotal: discountedSubtotal,
		Tax:                firstVisitTax,
		FirstVisitTotal:    firstVisitTotal,
	}

	if sel.Frequency != FrequencyOneTime {
		subsequentVisitTax := round2(discountedSubtotal * tbl.TaxRate())
		subsequentVisitTotal := round2(discountedSubtotal + subsequentVisitTax)
		savingsPerVisit := round2(firstVisitTotal - subsequentVisitTotal)
		q.SubsequentVisitTotal = &subsequentVisitTotal
		q.SavingsPerVisit = &savingsPerVisit
	}

	return q
}

func lookupCount(tbl *Table, cat Category, count int) float64 {
	if count <= 0 {
		return 0
	}
	v, _ := tbl.Lookup(cat, strconv.Itoa(count))
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
