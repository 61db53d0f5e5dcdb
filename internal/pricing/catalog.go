// Package pricing plans Genesis Crystal top-ups that cover a wish shortfall.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoPacks is returned when a catalog has nothing to buy.
var ErrNoPacks = errors.New("pricing: catalog has no packs")

// Pack models a purchasable Genesis Crystal SKU in the store.
type Pack struct {
	ID          string `json:"id" yaml:"id"`                     // SKU id, e.g., "6480"
	Name        string `json:"name" yaml:"name"`                 // display name
	Crystals    int    `json:"crystals" yaml:"crystals"`         // base crystals granted
	Bonus       int    `json:"bonus" yaml:"bonus"`               // bonus crystals on a regular purchase
	FirstTimeX2 bool   `json:"firstTimeX2" yaml:"first_time_x2"` // first purchase doubles Crystals and replaces Bonus
	PriceCents  int    `json:"priceCents" yaml:"price_cents"`    // price in minor units
}

// Catalog is a regional product catalog and tax info.
type Catalog struct {
	Currency string  `json:"currency" yaml:"currency"` // ISO code, e.g., "CAD"
	TaxRate  float64 `json:"taxRate" yaml:"tax_rate"`  // applied on the subtotal; 0 for tax-inclusive prices
	Packs    []Pack  `json:"packs" yaml:"packs"`
}

// FirstTimeState describes per-pack first-time eligibility.
type FirstTimeState map[string]bool // packID -> true if the first-time double is still available

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases     []Purchase `json:"purchases"`
	SubCents      int        `json:"subCents"`
	TaxCents      int        `json:"taxCents"`
	TotalCents    int        `json:"totalCents"`
	TotalCrystals int        `json:"totalCrystals"`
	Currency      string     `json:"currency"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	PackID    string `json:"packId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int    `json:"unitPrice"`
	UnitYield int    `json:"unitYield"` // crystals per unit in this plan
	Subtotal  int    `json:"subtotal"`
}

// DefaultCatalog is the US store price list.
func DefaultCatalog() Catalog {
	return Catalog{
		Currency: "USD",
		Packs: []Pack{
			{ID: "60", Name: "60 Genesis Crystals", Crystals: 60, FirstTimeX2: true, PriceCents: 99},
			{ID: "300", Name: "300 Genesis Crystals", Crystals: 300, Bonus: 30, FirstTimeX2: true, PriceCents: 499},
			{ID: "980", Name: "980 Genesis Crystals", Crystals: 980, Bonus: 110, FirstTimeX2: true, PriceCents: 1499},
			{ID: "1980", Name: "1980 Genesis Crystals", Crystals: 1980, Bonus: 260, FirstTimeX2: true, PriceCents: 2999},
			{ID: "3280", Name: "3280 Genesis Crystals", Crystals: 3280, Bonus: 600, FirstTimeX2: true, PriceCents: 4999},
			{ID: "6480", Name: "6480 Genesis Crystals", Crystals: 6480, Bonus: 1600, FirstTimeX2: true, PriceCents: 9999},
		},
	}
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read pack catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse pack catalog %s: %w", path, err)
	}
	if len(cat.Packs) == 0 {
		return Catalog{}, ErrNoPacks
	}
	return cat, nil
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}

// variant is one way to buy a pack: the first-time double or the regular SKU.
type variant struct {
	id, name     string
	yield, price int
	once         bool // first-time variants can be bought at most once
}

// variants expands the catalog. First-time variants come first so that a
// cost tie prefers the double.
func variants(cat Catalog, first FirstTimeState) []variant {
	var vs []variant
	for _, p := range cat.Packs {
		if p.FirstTimeX2 && first[p.ID] {
			vs = append(vs, variant{
				id:    p.ID + "#x2",
				name:  p.Name + " (x2)",
				yield: p.Crystals * 2,
				price: p.PriceCents,
				once:  true,
			})
		}
	}
	for _, p := range cat.Packs {
		vs = append(vs, variant{id: p.ID, name: p.Name, yield: p.Crystals + p.Bonus, price: p.PriceCents})
	}
	return vs
}

// buildPlan turns variant quantities into a priced plan, in catalog order.
func buildPlan(cat Catalog, vs []variant, qty []int) Plan {
	plan := Plan{Currency: cat.Currency}
	for i, v := range vs {
		if qty[i] == 0 {
			continue
		}
		sub := v.price * qty[i]
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:    v.id,
			Name:      v.name,
			Qty:       qty[i],
			UnitPrice: v.price,
			UnitYield: v.yield,
			Subtotal:  sub,
		})
		plan.SubCents += sub
		plan.TotalCrystals += v.yield * qty[i]
	}
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	return plan
}
