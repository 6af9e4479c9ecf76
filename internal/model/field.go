package model

import "github.com/james2654817/sales-dashboard-backend/pkg/notion"

// FieldSpec declares where a logical field lives in one physical Notion
// database: the property name and its wrapper kind. Each database has
// evolved its own naming, so specs are per group, not global.
type FieldSpec struct {
	Property string           `mapstructure:"property"`
	Kind     notion.FieldKind `mapstructure:"kind"`
}

// GroupSpec describes one physical Notion database (a "store group"):
// which stores it holds rows for and how to read each logical field.
type GroupSpec struct {
	Name       string          `mapstructure:"name"`
	DatabaseID string          `mapstructure:"database_id"`
	Stores     []StoreIdentity `mapstructure:"stores"`

	Branch    FieldSpec `mapstructure:"branch"`
	Date      FieldSpec `mapstructure:"date"`
	Sales     FieldSpec `mapstructure:"sales"`
	Customers FieldSpec `mapstructure:"customers"`
	AvgPrice  FieldSpec `mapstructure:"avg_price"`
}

// DefaultGroups returns the built-in group schemas with database ids
// filled in by the caller. The hr database holds 大同店 and 安平店 rows
// (sales is a formula column there); the mhp database holds 時刻暖鍋.
func DefaultGroups(hrDB, mhpDB string) []GroupSpec {
	return []GroupSpec{
		{
			Name:       "hr",
			DatabaseID: hrDB,
			Stores:     []StoreIdentity{StoreDatong, StoreAnping},
			Branch:     FieldSpec{Property: "分店", Kind: notion.KindSelect},
			Date:       FieldSpec{Property: "營業日期", Kind: notion.KindDate},
			Sales:      FieldSpec{Property: "總營業額", Kind: notion.KindFormula},
			Customers:  FieldSpec{Property: "來客數", Kind: notion.KindNumber},
			AvgPrice:   FieldSpec{Property: "客單價", Kind: notion.KindFormula},
		},
		{
			Name:       "mhp",
			DatabaseID: mhpDB,
			Stores:     []StoreIdentity{StoreMoment},
			Branch:     FieldSpec{Property: "餐廳單位", Kind: notion.KindSelect},
			Date:       FieldSpec{Property: "營業日期", Kind: notion.KindDate},
			Sales:      FieldSpec{Property: "總營業額", Kind: notion.KindFormula},
			Customers:  FieldSpec{Property: "來客數", Kind: notion.KindNumber},
			AvgPrice:   FieldSpec{Property: "客單價", Kind: notion.KindNumber},
		},
	}
}
