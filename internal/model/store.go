// Package model holds the reporting domain types: store identities, the
// per-database field schemas, and the assembled store records.
package model

import "strings"

// StoreIdentity is the canonical name of one restaurant location. The
// set is closed; raw branch labels from Notion resolve into it or are
// dropped.
type StoreIdentity string

const (
	StoreDatong StoreIdentity = "大同店"
	StoreAnping StoreIdentity = "安平店"
	StoreMoment StoreIdentity = "時刻暖鍋"
)

// AllStores lists every identity in the dashboard's display order.
var AllStores = []StoreIdentity{StoreDatong, StoreAnping, StoreMoment}

// storeRule maps a branch-label substring to an identity. Rules are
// evaluated in order; the first match wins.
type storeRule struct {
	substr   string
	identity StoreIdentity
}

// storeRules is kept as data rather than inline conditionals so the
// resolution order is visible and testable in one place. Labels vary
// per database revision ("大同幹道店", "家根-大同", ...), hence substring
// matching instead of equality.
var storeRules = []storeRule{
	{"大同", StoreDatong},
	{"安平", StoreAnping},
	{"時刻", StoreMoment},
	{"暖鍋", StoreMoment},
}

// ResolveStore maps a raw branch label to its canonical identity.
// Unmatched labels return ok=false and the row is dropped by the
// aggregator, never attributed to a wrong store.
func ResolveStore(label string) (StoreIdentity, bool) {
	for _, r := range storeRules {
		if strings.Contains(label, r.substr) {
			return r.identity, true
		}
	}
	return "", false
}

// StoreRecord is one store's figures as served to the dashboard. Built
// fresh per request and discarded after serialization.
type StoreRecord struct {
	Name             StoreIdentity `json:"name"`
	TodaySales       float64       `json:"todaySales"`
	TodayCustomers   int           `json:"todayCustomers"`
	TodayAvgPrice    float64       `json:"todayAvgPrice"`
	LastUpdate       string        `json:"lastUpdate"`
	MonthlyTotal     float64       `json:"monthlyTotal"`
	MonthlyCustomers int           `json:"monthlyCustomers"`
	DataMonth        string        `json:"dataMonth"`
	IsToday          bool          `json:"isToday"`
}
