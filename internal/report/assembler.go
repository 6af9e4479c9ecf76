// Package report assembles the dashboard payload: it fans out to the
// store-group databases, merges the aggregated records, and applies the
// caller's permission scope.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/james2654817/sales-dashboard-backend/internal/aggregate"
	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/model"
	"github.com/james2654817/sales-dashboard-backend/pkg/notion"
)

// Report is the full /api/sales payload body.
type Report struct {
	Data       []*model.StoreRecord `json:"data"`
	TodayTotal float64              `json:"todayTotal"`
	TodayDate  string               `json:"todayDate"`
	Timestamp  string               `json:"timestamp"`
}

// visibleStores maps a permission scope to the identities it may see.
// Unknown permissions see nothing rather than everything.
var visibleStores = map[auth.Permission][]model.StoreIdentity{
	auth.PermissionAll: model.AllStores,
	auth.PermissionHR:  {model.StoreDatong, model.StoreAnping},
	auth.PermissionMHP: {model.StoreMoment},
}

// Assembler builds reports from the configured store groups.
type Assembler struct {
	client notion.Client
	groups []model.GroupSpec
}

// NewAssembler creates an Assembler over the given Notion client and
// group schemas.
func NewAssembler(client notion.Client, groups []model.GroupSpec) *Assembler {
	return &Assembler{client: client, groups: groups}
}

// Build fetches and aggregates every group visible to the permission,
// concurrently, and assembles the response records in the stable store
// display order. Any single group failure fails the whole report.
func (a *Assembler) Build(ctx context.Context, perm auth.Permission, now time.Time) (*Report, error) {
	visible := make(map[model.StoreIdentity]bool)
	for _, s := range visibleStores[perm] {
		visible[s] = true
	}

	currentMonth := now.Format("2006-01")
	today := now.Format("2006-01-02")

	merged := make(map[model.StoreIdentity]*model.StoreRecord, len(model.AllStores))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range a.groups {
		if !groupVisible(group, visible) {
			continue
		}
		group := group
		g.Go(func() error {
			records, err := aggregate.FetchGroup(gctx, a.client, group, currentMonth)
			if err != nil {
				return eris.Wrap(err, "report: group "+group.Name)
			}
			mu.Lock()
			for id, rec := range records {
				merged[id] = rec
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Data:      make([]*model.StoreRecord, 0, len(merged)),
		TodayDate: today,
		Timestamp: now.Format(time.RFC3339),
	}
	for _, id := range model.AllStores {
		rec, ok := merged[id]
		if !ok || !visible[id] {
			continue
		}
		rec.DataMonth = currentMonth
		rec.IsToday = rec.LastUpdate == today
		if rec.IsToday {
			rep.TodayTotal += rec.TodaySales
		}
		rep.Data = append(rep.Data, rec)
	}

	zap.L().Info("report assembled",
		zap.String("permission", string(perm)),
		zap.Int("stores", len(rep.Data)),
		zap.Float64("today_total", rep.TodayTotal),
	)
	return rep, nil
}

// groupVisible reports whether any of the group's stores fall inside
// the permission scope, i.e. whether the group is worth fetching.
func groupVisible(group model.GroupSpec, visible map[model.StoreIdentity]bool) bool {
	for _, s := range group.Stores {
		if visible[s] {
			return true
		}
	}
	return false
}
