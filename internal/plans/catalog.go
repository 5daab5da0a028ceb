// Package plans holds the purchasable plan catalog. Plans are loaded
// from an optional YAML file with built-in defaults matching the
// original deployment's price points.
package plans

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Plan describes one purchasable subscription tier.
type Plan struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	AmountCents int64  `yaml:"amount_cents" json:"amount_cents"` // one-time checkout price
	CallLimit   int64  `yaml:"call_limit" json:"call_limit"`     // API calls per month
	RateLimit   int    `yaml:"rate_limit" json:"rate_limit"`     // API calls per minute
}

type fileConfig struct {
	Plans []Plan `yaml:"plans"`
}

// Catalog is an immutable plan lookup, built once at startup.
type Catalog struct {
	byID  map[string]Plan
	order []string
}

// freeTier is what a client without a purchased plan gets. It is not
// listed on the store page.
var freeTier = Plan{
	ID:        "",
	Name:      "Free Tier",
	CallLimit: 100,
	RateLimit: 10,
}

// defaults mirror the original deployment's plan IDs and prices.
func defaults() []Plan {
	return []Plan{
		{ID: "basicplan", Name: "Basic Plan", AmountCents: 5000, CallLimit: 1000, RateLimit: 60},
		{ID: "premiumplan", Name: "Premium Plan", AmountCents: 20000, CallLimit: 10000, RateLimit: 300},
		{ID: "premiumbundle", Name: "Premium Bundle", AmountCents: 200000, CallLimit: 100000, RateLimit: 600},
		{ID: "riskcompliancebundle", Name: "Risk & Compliance Bundle", AmountCents: 250000, CallLimit: 100000, RateLimit: 600},
	}
}

// Load builds the catalog from the YAML file at path, or from built-in
// defaults when path is empty.
func Load(path string) (*Catalog, error) {
	entries := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading plans file: %w", err)
		}
		var cfg fileConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing plans file: %w", err)
		}
		if len(cfg.Plans) > 0 {
			entries = cfg.Plans
		}
	}

	c := &Catalog{byID: make(map[string]Plan, len(entries))}
	for _, p := range entries {
		if p.ID == "" {
			return nil, fmt.Errorf("plan with empty id in catalog")
		}
		if p.AmountCents <= 0 {
			return nil, fmt.Errorf("plan %q has non-positive amount", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Get returns the plan for id. An empty or unknown id resolves to the
// free tier, so clients that never purchased anything still have limits.
func (c *Catalog) Get(id string) Plan {
	if p, ok := c.byID[id]; ok {
		return p
	}
	return freeTier
}

// Lookup returns the plan for id and whether it is purchasable.
func (c *Catalog) Lookup(id string) (Plan, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List returns all purchasable plans in catalog order.
func (c *Catalog) List() []Plan {
	result := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.byID[id])
	}
	return result
}

// IDs returns the sorted plan IDs, mainly for error messages.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}
