package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// MaxQueryRows caps how many rows QueryAll will fetch from a single
// database. The dashboard only needs the current month plus a little
// history, and an unbounded fetch against a years-old database would
// dominate request latency.
const MaxQueryRows = 500

// QueryAll fetches pages from a Notion database, following cursor
// pagination until the database is exhausted or MaxQueryRows pages have
// been collected. Rate limiting is enforced by the Client (3 req/s by
// default). Sort order is whatever the caller requests in filter; Notion
// preserves it across pages.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}
	if req.PageSize == 0 {
		req.PageSize = 100
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore || len(all) >= MaxQueryRows {
			break
		}

		req.StartCursor = resp.NextCursor
	}

	if len(all) > MaxQueryRows {
		all = all[:MaxQueryRows]
	}
	return all, nil
}

// SortedByDateDesc builds a query request that asks Notion to return rows
// newest-first on the given date property.
func SortedByDateDesc(dateProperty string) *notionapi.DatabaseQueryRequest {
	return &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{
				Property:  dateProperty,
				Direction: notionapi.SortOrderDESC,
			},
		},
	}
}
