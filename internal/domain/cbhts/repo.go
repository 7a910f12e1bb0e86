package cbhts

import (
	"context"
	"database/sql"

	"github.com/abt/cbhts-integration/pkg/pagination"
)

// Querier is the database/sql read surface, satisfied by *sql.DB, *sql.Conn
// and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Fetcher reads visits and their correlated records in bulk. Every method is
// a single round trip; lookups with nothing to look up return empty results
// without querying.
type Fetcher interface {
	Count(ctx context.Context, q Querier, hfrCode string, start, end int64) (int64, error)
	FetchPage(ctx context.Context, q Querier, hfrCode string, start, end int64, page pagination.Params) ([]VisitRecord, error)
	FetchTests(ctx context.Context, q Querier, visits []VisitRecord, start, end int64) (map[string][]TestRecord, error)
	FetchSelfTests(ctx context.Context, q Querier, visits []VisitRecord) (map[string][]SelfTestRecord, error)
	FetchEligibility(ctx context.Context, q Querier, visits []VisitRecord) (map[string]bool, error)
	// LatestMetadataByClientCode returns nil when the client has no visit at
	// the facility.
	LatestMetadataByClientCode(ctx context.Context, q Querier, hfrCode, clientCode string) (*VerificationMetadata, error)
}
