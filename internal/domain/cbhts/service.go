package cbhts

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/abt/cbhts-integration/pkg/pagination"
)

const defaultParallelThreshold = 64

// Opener hands out a dedicated connection. *sql.DB satisfies it.
type Opener interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

type Service struct {
	db                Opener
	fetcher           Fetcher
	mapper            *Mapper
	logger            zerolog.Logger
	parallelThreshold int
}

type ServiceOption func(*Service)

// WithParallelThreshold sets the page size above which records are mapped
// concurrently. Values below 1 keep the default.
func WithParallelThreshold(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

func NewService(db Opener, fetcher Fetcher, mapper *Mapper, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		db:                db,
		fetcher:           fetcher,
		mapper:            mapper,
		logger:            logger,
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns one page of exchange records for the requested facility and
// window. All queries of a call share one connection.
func (s *Service) Fetch(ctx context.Context, req *Request) (*pagination.Page[OutputRecord], error) {
	if errs := ValidateRequest(req); len(errs) > 0 {
		return nil, &ValidationError{Details: errs}
	}
	page := req.Page()
	hfr, start, end := *req.HFRCode, *req.StartDate, *req.EndDate

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: acquire connection: %w", err)
	}
	defer conn.Close()

	total, err := s.fetcher.Count(ctx, conn, hfr, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}
	if total == 0 {
		return pagination.NewPage[OutputRecord](page, 0, nil), nil
	}

	visits, err := s.fetcher.FetchPage(ctx, conn, hfr, start, end, page)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}
	if len(visits) == 0 {
		return pagination.NewPage[OutputRecord](page, total, nil), nil
	}

	tests, err := s.fetcher.FetchTests(ctx, conn, visits, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}
	selfTests, err := s.fetcher.FetchSelfTests(ctx, conn, visits)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}
	eligibility, err := s.fetcher.FetchEligibility(ctx, conn, visits)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}

	records, err := s.mapAll(ctx, visits, tests, selfTests, eligibility)
	if err != nil {
		return nil, fmt.Errorf("fetch cbhts services: %w", err)
	}

	s.logger.Info().
		Str("hfr_code", hfr).
		Int("page_index", page.PageIndex).
		Int("page_size", page.PageSize).
		Int64("total_records", total).
		Int("mapped", len(records)).
		Bool("has_next", page.HasNext(total)).
		Msg("cbhts page mapped")

	return pagination.NewPage(page, total, records), nil
}

// LatestMetadata returns the newest visit context for a client at a facility,
// nil when there is none.
func (s *Service) LatestMetadata(ctx context.Context, hfrCode, clientCode string) (*VerificationMetadata, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return s.fetcher.LatestMetadataByClientCode(ctx, conn, hfrCode, clientCode)
}

func (s *Service) mapAll(ctx context.Context, visits []VisitRecord, tests map[string][]TestRecord,
	selfTests map[string][]SelfTestRecord, eligibility map[string]bool) ([]OutputRecord, error) {
	records := make([]OutputRecord, len(visits))
	mapOne := func(i int) {
		v := visits[i]
		var eligible *bool
		if e, ok := eligibility[v.BaseEntityID]; ok {
			eligible = &e
		}
		records[i] = s.mapper.Map(v, tests[v.Key()], selfTests[v.BaseEntityID], eligible)
	}

	if len(visits) <= s.parallelThreshold {
		for i := range visits {
			mapOne(i)
		}
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range visits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mapOne(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
