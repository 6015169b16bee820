// Package pricing holds the quote engine and the pricing tables it reads.
// A Table is pure data: every selection value maps to a price contribution,
// a multiplier, or a discount rate through the same lookup contract.
package pricing

import (
	"fmt"
	"strings"
)

// Category identifies one axis of the pricing table.
type Category string

const (
	CategoryHomeSize     Category = "homeSize"
	CategoryBedrooms     Category = "bedrooms"
	CategoryBathrooms    Category = "bathrooms"
	CategoryHalfBaths    Category = "halfBaths"
	CategoryCleaningType Category = "cleaningType"
	CategoryAddOns       Category = "addOns"
	CategoryFrequency    Category = "frequency"
)

// Frequency values recognized by the built-in tables.
const (
	FrequencyOneTime   = "oneTime"
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyTriweekly = "triweekly"
	FrequencyMonthly   = "monthly"
)

// Table variants shipped with the service.
const (
	VariantStandard = "standard"
	VariantQuick    = "quick"
	VariantFlat     = "flat"
)

// Table is an immutable lookup structure mapping selection values to numeric
// price contributions. Callers only read; unknown keys report absence rather
// than an error.
type Table struct {
	variant    string
	taxRate    float64
	categories map[Category]map[string]float64
}

// NewTable builds a table from raw category data. The maps are copied so the
// table cannot be mutated through the caller's references.
func NewTable(variant string, taxRate float64, categories map[Category]map[string]float64) *Table {
	copied := make(map[Category]map[string]float64, len(categories))
	for cat, entries := range categories {
		m := make(map[string]float64, len(entries))
		for k, v := range entries {
			m[k] = v
		}
		copied[cat] = m
	}
	return &Table{variant: variant, taxRate: taxRate, categories: copied}
}

// Variant returns the table's variant name.
func (t *Table) Variant() string { return t.variant }

// TaxRate returns the tax rate applied to every quote from this table.
func (t *Table) TaxRate() float64 { return t.taxRate }

// Lookup returns the value for a category key and whether the key is mapped.
func (t *Table) Lookup(cat Category, key string) (float64, bool) {
	entries, ok := t.categories[cat]
	if !ok {
		return 0, false
	}
	v, ok := entries[key]
	return v, ok
}

// salesTaxRate is the HST rate baked into every built-in table.
const salesTaxRate = 0.13

// StandardTable is the full residential pricing table: base price by home
// size, incremental room costs, cleaning-type multipliers, itemized add-ons,
// and recurring-frequency discounts.
func StandardTable() *Table {
	return NewTable(VariantStandard, salesTaxRate, map[Category]map[string]float64{
		CategoryHomeSize: {
			"small":   89,
			"medium":  109,
			"large":   129,
			"xlarge":  149,
			"xxlarge": 179,
		},
		CategoryBedrooms: {
			"1": 10, "2": 20, "3": 30, "4": 40, "5": 50,
		},
		CategoryBathrooms: {
			"1": 15, "2": 30, "3": 45, "4": 60, "5": 75,
		},
		CategoryHalfBaths: {
			"1": 8, "2": 16, "3": 24,
		},
		CategoryCleaningType: {
			"standard": 1.0,
			"deep":     1.5,
			"movein":   1.75,
			"airbnb":   1.25,
			"office":   1.2,
		},
		CategoryAddOns: {
			"insideFridge":      25,
			"insideOven":        25,
			"insideCabinets":    30,
			"windowsUpTo6":      45,
			"windowsUpTo12":     80,
			"windowsUpTo24":     150,
			"changeBedSheets":   10,
			"loadDishwasher":    15,
			"sanitization":      40,
			"basement":          40,
			"additionalKitchen": 50,
		},
		CategoryFrequency: {
			FrequencyOneTime:   0,
			FrequencyWeekly:    0.20,
			FrequencyBiweekly:  0.15,
			FrequencyTriweekly: 0.12,
			FrequencyMonthly:   0.10,
		},
	})
}

// QuickTable is the simplified quote variant: one base rate regardless of
// home size, linear per-room pricing, no half baths and no add-ons.
func QuickTable() *Table {
	return NewTable(VariantQuick, salesTaxRate, map[Category]map[string]float64{
		CategoryHomeSize: {
			"small": 120, "medium": 120, "large": 120, "xlarge": 120, "xxlarge": 120,
		},
		CategoryBedrooms: {
			"1": 15, "2": 30, "3": 45, "4": 60, "5": 75,
		},
		CategoryBathrooms: {
			"1": 20, "2": 40, "3": 60, "4": 80, "5": 100,
		},
		CategoryCleaningType: {
			"standard": 1.0,
			"deep":     1.5,
			"movein":   1.75,
			"airbnb":   1.25,
		},
		CategoryFrequency: {
			FrequencyOneTime:   0,
			FrequencyWeekly:    0.20,
			FrequencyBiweekly:  0.15,
			FrequencyTriweekly: 0.12,
			FrequencyMonthly:   0.10,
		},
	})
}

// FlatTable is the flat-rate quote variant: price by home size plus flat
// extras, no room counts, no multipliers, no recurring discounts.
func FlatTable() *Table {
	return NewTable(VariantFlat, salesTaxRate, map[Category]map[string]float64{
		CategoryHomeSize: {
			"small":   89,
			"medium":  109,
			"large":   129,
			"xlarge":  149,
			"xxlarge": 179,
		},
		CategoryAddOns: {
			"deepClean":      60,
			"moveInOut":      80,
			"insideFridge":   25,
			"insideOven":     25,
			"insideCabinets": 30,
		},
		CategoryFrequency: {
			FrequencyOneTime: 0,
		},
	})
}

// TableForVariant resolves a configured variant name to its table.
func TableForVariant(name string) (*Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VariantStandard:
		return StandardTable(), nil
	case VariantQuick:
		return QuickTable(), nil
	case VariantFlat:
		return FlatTable(), nil
	default:
		return nil, fmt.Errorf("pricing: unknown table variant %q", name)
	}
}
