// Package aggregate normalizes raw Notion rows into per-store records:
// it resolves each row to a canonical store, takes the newest row as the
// "today" snapshot, and sums current-month rows into monthly totals.
package aggregate

import (
	"context"
	"sort"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/james2654817/sales-dashboard-backend/internal/model"
	"github.com/james2654817/sales-dashboard-backend/pkg/notion"
)

// row is one Notion page reduced to the logical fields of a group.
type row struct {
	store     model.StoreIdentity
	date      string
	sales     float64
	customers float64
	avgPrice  float64
}

// FetchGroup queries a group's database newest-first and aggregates the
// rows. One failed query fails the whole call; there is no partial
// result.
func FetchGroup(ctx context.Context, client notion.Client, group model.GroupSpec, currentMonth string) (map[model.StoreIdentity]*model.StoreRecord, error) {
	pages, err := notion.QueryAll(ctx, client, group.DatabaseID, notion.SortedByDateDesc(group.Date.Property))
	if err != nil {
		return nil, eris.Wrap(err, "aggregate: fetch group "+group.Name)
	}
	return Aggregate(pages, group, currentMonth), nil
}

// Aggregate builds one StoreRecord per store in the group from raw
// pages. The newest dated row per store becomes the today snapshot;
// rows whose date carries the currentMonth ("YYYY-MM") prefix accumulate
// into the monthly totals. Rows with no resolvable store or no date are
// skipped entirely. The result is freshly allocated on every call.
func Aggregate(pages []notionapi.Page, group model.GroupSpec, currentMonth string) map[model.StoreIdentity]*model.StoreRecord {
	records := make(map[model.StoreIdentity]*model.StoreRecord, len(group.Stores))
	for _, s := range group.Stores {
		records[s] = &model.StoreRecord{Name: s}
	}

	rows := make([]row, 0, len(pages))
	skipped := 0
	for _, p := range pages {
		r, ok := parseRow(p, group)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, r)
	}
	if skipped > 0 {
		zap.L().Debug("aggregate: skipped rows without store or date",
			zap.String("group", group.Name),
			zap.Int("skipped", skipped),
		)
	}

	// Notion is asked for a descending sort, but the snapshot contract
	// ("first seen = latest") must hold even if the sort spec is lost.
	// ISO date strings order lexically, so a plain string sort suffices.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date > rows[j].date
	})

	for _, r := range rows {
		rec, ok := records[r.store]
		if !ok {
			// Resolvable store that is not a member of this group.
			continue
		}

		if rec.LastUpdate == "" {
			rec.TodaySales = r.sales
			rec.TodayCustomers = int(r.customers)
			rec.TodayAvgPrice = r.avgPrice
			rec.LastUpdate = r.date
		}

		if len(r.date) >= len(currentMonth) && r.date[:len(currentMonth)] == currentMonth {
			rec.MonthlyTotal += r.sales
			rec.MonthlyCustomers += int(r.customers)
		}
	}

	return records
}

// parseRow extracts a group's logical fields from one page. Rows with
// an empty date are ineligible for both the snapshot and the monthly
// totals, so they are dropped here rather than special-cased later.
func parseRow(p notionapi.Page, group model.GroupSpec) (row, bool) {
	r := row{
		date:      notion.StringValue(p.Properties, group.Date.Property, group.Date.Kind),
		sales:     notion.FloatValue(p.Properties, group.Sales.Property, group.Sales.Kind),
		customers: notion.FloatValue(p.Properties, group.Customers.Property, group.Customers.Kind),
		avgPrice:  notion.FloatValue(p.Properties, group.AvgPrice.Property, group.AvgPrice.Kind),
	}
	if r.date == "" {
		return row{}, false
	}

	label := notion.StringValue(p.Properties, group.Branch.Property, group.Branch.Kind)
	if label == "" && group.Branch.Kind == notion.KindSelect {
		// Older database revisions stored the branch as rich text.
		label = notion.StringValue(p.Properties, group.Branch.Property, notion.KindRichText)
	}

	store, ok := model.ResolveStore(label)
	if !ok {
		// A single-store database carries no usable branch column; its
		// rows all belong to that store. Anything else is dropped.
		if label != "" || len(group.Stores) != 1 {
			return row{}, false
		}
		store = group.Stores[0]
	}
	r.store = store
	return r, true
}
