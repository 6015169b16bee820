package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeQuote_OneTimeStandard(t *testing.T) {
	sel := Selections{
		HomeSize:     "medium",
		Bedrooms:     2,
		Bathrooms:    1,
		CleaningType: "standard",
		Frequency:    FrequencyOneTime,
	}

	q := ComputeQuote(sel, StandardTable())

	assert.Equal(t, 109.0, q.BasePrice)
	assert.Equal(t, 20.0, q.BedroomCost)
	assert.Equal(t, 15.0, q.BathroomCost)
	assert.Equal(t, 0.0, q.HalfBathCost)
	assert.Equal(t, 144.00, q.Subtotal)
	assert.Equal(t, 18.72, q.Tax)
	assert.Equal(t, 162.72, q.FirstVisitTotal)
	assert.Nil(t, q.SubsequentVisitTotal)
	assert.Nil(t, q.SavingsPerVisit)
}

func TestComputeQuote_WeeklyDiscount(t *testing.T) {
	sel := Selections{
		HomeSize:     "medium",
		Bedrooms:     2,
		Bathrooms:    1,
		CleaningType: "standard",
		Frequency:    FrequencyWeekly,
	}

	q := ComputeQuote(sel, StandardTable())

	assert.Equal(t, 28.80, q.RecurringDiscount)
	assert.Equal(t, 115.20, q.DiscountedSubtotal)
	assert.Equal(t, 162.72, q.FirstVisitTotal)
	require.NotNil(t, q.SubsequentVisitTotal)
	assert.Equal(t, 130.18, *q.SubsequentVisitTotal)
	require.NotNil(t, q.SavingsPerVisit)
	assert.Equal(t, 32.54, *q.SavingsPerVisit)
}

func TestComputeQuote_DeepMultiplierRounding(t *testing.T) {
	sel := Selections{
		HomeSize:     "small",
		CleaningType: "deep",
		Frequency:    FrequencyOneTime,
	}

	q := ComputeQuote(sel, StandardTable())

	assert.Equal(t, 133.50, q.Subtotal)
	assert.Equal(t, 17.36, q.Tax)
	assert.Equal(t, 150.86, q.FirstVisitTotal)
}

func TestComputeQuote_Deterministic(t *testing.T) {
	sel := Selections{
		HomeSize:     "large",
		Bedrooms:     3,
		Bathrooms:    2,
		HalfBaths:    1,
		CleaningType: "movein",
		Frequency:    FrequencyMonthly,
		AddOns:       []string{"insideOven", "basement"},
	}
	tbl := StandardTable()

	first := ComputeQuote(sel, tbl)
	second := ComputeQuote(sel, tbl)

	assert.Equal(t, first, second)
}

func TestComputeQuote_AddOnAdditivity(t *testing.T) {
	base := Selections{
		HomeSize:     "xlarge",
		Bedrooms:     4,
		Bathrooms:    3,
		CleaningType: "deep",
		Frequency:    FrequencyBiweekly,
	}
	tbl := StandardTable()
	without := ComputeQuote(base, tbl)

	addOns := []struct {
		key  string
		cost float64
	}{
		{"insideFridge", 25},
		{"windowsUpTo12", 80},
		{"additionalKitchen", 50},
	}
	for _, tt := range addOns {
		t.Run(tt.key, func(t *testing.T) {
			sel := base
			sel.AddOns = []string{tt.key}
			with := ComputeQuote(sel, tbl)
			assert.Equal(t, tt.cost, with.AddOnsCost)
			assert.InDelta(t, without.Subtotal+tt.cost, with.Subtotal, 0.001)
		})
	}
}

func TestComputeQuote_DuplicateAddOnsCountedOnce(t *testing.T) {
	sel := Selections{
		HomeSize:     "small",
		Bedrooms:     1,
		Bathrooms:    1,
		CleaningType: "standard",
		Frequency:    FrequencyOneTime,
		AddOns:       []string{"insideOven", "insideOven"},
	}

	q := ComputeQuote(sel, StandardTable())

	assert.Equal(t, 25.0, q.AddOnsCost)
}

func TestComputeQuote_UnknownKeysDegradeToZero(t *testing.T) {
	sel := Selections{
		HomeSize:     "mansion",
		Bedrooms:     2,
		Bathrooms:    1,
		CleaningType: "industrial",
		Frequency:    "fortnightly",
		AddOns:       []string{"chimneySweep"},
	}

	q := ComputeQuote(sel, StandardTable())

	assert.Equal(t, 0.0, q.BasePrice)
	assert.Equal(t, 0.0, q.AddOnsCost)
	// Unknown cleaning type applies the identity multiplier.
	assert.Equal(t, 35.00, q.Subtotal)
	// Unknown frequency means zero discount, so both visits price the same.
	assert.Equal(t, 0.0, q.RecurringDiscount)
	require.NotNil(t, q.SubsequentVisitTotal)
	assert.Equal(t, q.FirstVisitTotal, *q.SubsequentVisitTotal)
	require.NotNil(t, q.SavingsPerVisit)
	assert.Equal(t, 0.0, *q.SavingsPerVisit)
}

func TestComputeQuote_RecurringNeverExceedsFirstVisit(t *testing.T) {
	tbl := StandardTable()
	for _, freq := range []string{FrequencyWeekly, FrequencyBiweekly, FrequencyTriweekly, FrequencyMonthly} {
		t.Run(freq, func(t *testing.T) {
			q := ComputeQuote(Selections{
				HomeSize:     "xxlarge",
				Bedrooms:     5,
				Bathrooms:    4,
				HalfBaths:    2,
				CleaningType: "movein",
				Frequency:    freq,
				AddOns:       []string{"sanitization", "windowsUpTo24"},
			}, tbl)

			require.NotNil(t, q.SubsequentVisitTotal)
			assert.LessOrEqual(t, *q.SubsequentVisitTotal, q.FirstVisitTotal)
			require.NotNil(t, q.SavingsPerVisit)
			assert.GreaterOrEqual(t, *q.SavingsPerVisit, 0.0)
			assert.InDelta(t, q.FirstVisitTotal-*q.SubsequentVisitTotal, *q.SavingsPerVisit, 0.005)
		})
	}
}

func TestComputeQuote_QuickVariant(t *testing.T) {
	// Base 120 + 2 bedrooms (30) + 1 bathroom (20) = 170, deep x1.5 = 255.
	sel := Selections{
		HomeSize:     "medium",
		Bedrooms:     2,
		Bathrooms:    1,
		CleaningType: "deep",
		Frequency:    FrequencyOneTime,
	}

	q := ComputeQuote(sel, QuickTable())

	assert.Equal(t, 120.0, q.BasePrice)
	assert.Equal(t, 255.00, q.Subtotal)
	assert.Equal(t, 33.15, q.Tax)
	assert.Equal(t, 288.15, q.FirstVisitTotal)
}

func TestComputeQuote_FlatVariant(t *testing.T) {
	// Flat variant ignores room counts and applies no multiplier or discount.
	sel := Selections{
		HomeSize:     "small",
		Bedrooms:     3,
		Bathrooms:    2,
		CleaningType: "deep",
		Frequency:    FrequencyOneTime,
		AddOns:       []string{"deepClean", "insideFridge"},
	}

	q := ComputeQuote(sel, FlatTable())

	assert.Equal(t, 89.0, q.BasePrice)
	assert.Equal(t, 0.0, q.BedroomCost)
	assert.Equal(t, 85.0, q.AddOnsCost)
	assert.Equal(t, 174.00, q.Subtotal)
	assert.Equal(t, 22.62, q.Tax)
	assert.Equal(t, 196.62, q.FirstVisitTotal)
}

func TestSelections_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		sel  Selections
		want []string
	}{
		{"all present", Selections{HomeSize: "small", Bedrooms: 1, Bathrooms: 1}, nil},
		{"none present", Selections{}, []string{"home_size", "bedrooms", "bathrooms"}},
		{"rooms missing", Selections{HomeSize: "large"}, []string{"bedrooms", "bathrooms"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.MissingRequired())
		})
	}
}

func TestQuote_FirstVisitCents(t *testing.T) {
	q := Quote{FirstVisitTotal: 162.72}
	assert.Equal(t, int64(16272), q.FirstVisitCents())
}
