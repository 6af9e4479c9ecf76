package report

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/mock"

	"github.com/james2654817/sales-dashboard-backend/internal/model"
	"github.com/james2654817/sales-dashboard-backend/pkg/notion"
)

// mockNotionClient implements notion.Client for testing.
type mockNotionClient struct {
	mock.Mock
}

func (m *mockNotionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

// testGroups returns the standard two-group layout against fake
// database ids.
func testGroups() []model.GroupSpec {
	return model.DefaultGroups("hr-db", "mhp-db")
}

// salesPage builds a page in the default group schema.
func salesPage(branch, day string, sales, customers float64) notionapi.Page {
	props := make(notionapi.Properties)

	if branch != "" {
		props["分店"] = &notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: branch},
		}
		props["餐廳單位"] = &notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: branch},
		}
	}
	if day != "" {
		ts, _ := time.Parse("2006-01-02", day)
		d := notionapi.Date(ts)
		props["營業日期"] = &notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	props["總營業額"] = &notionapi.FormulaProperty{
		Type:    notionapi.PropertyTypeFormula,
		Formula: notionapi.Formula{Type: notionapi.FormulaTypeNumber, Number: sales},
	}
	props["來客數"] = &notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: customers,
	}

	return notionapi.Page{Properties: props}
}

// respond registers a one-page query response for a database id.
func respond(mc *mockNotionClient, dbID string, pages ...notionapi.Page) {
	mc.On("QueryDatabase", mock.Anything, dbID, mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{Results: pages, HasMore: false}, nil)
}

var _ notion.Client = (*mockNotionClient)(nil)
