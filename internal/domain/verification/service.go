package verification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abt/cbhts-integration/internal/domain/cbhts"
)

const eventPath = "/opensrp/rest/event/add"

var ErrMissingDestination = errors.New("missing OpenSRP destination URL")

const (
	msgNoVisit    = "No cbhts_services record found for clientCode and hfrCode"
	msgSendFailed = "Failed to send event to OpenSRP"
)

// MetadataSource finds the latest visit context of a client at a facility.
// It returns nil when the client has no visit there.
type MetadataSource interface {
	LatestMetadata(ctx context.Context, hfrCode, clientCode string) (*cbhts.VerificationMetadata, error)
}

// Sender delivers a payload to OpenSRP and returns the response body.
type Sender interface {
	Send(ctx context.Context, payload any, url, username, password string) (string, error)
}

// Destination is where verification events are posted.
type Destination struct {
	URL      string
	Username string
	Password string
}

// ResolveEventURL prefers an explicit event URL, otherwise derives it from the
// server base URL. Empty when neither is set.
func ResolveEventURL(eventURL, serverURL string) string {
	if u := strings.TrimSpace(eventURL); u != "" {
		return u
	}
	base := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if base == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(base), eventPath) {
		return base
	}
	return base + eventPath
}

type Service struct {
	metadata MetadataSource
	sender   Sender
	dest     Destination
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

// WithClock replaces the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the generator of event and form submission ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(metadata MetadataSource, sender Sender, dest Destination, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		metadata: metadata,
		sender:   sender,
		dest:     dest,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process sends one OpenSRP event per item. Failures are reported per item.
func (s *Service) Process(ctx context.Context, req *Request) (*Summary, error) {
	if errs := ValidateRequest(req); len(errs) > 0 {
		return nil, &ValidationError{Details: errs}
	}
	if blank(s.dest.URL) {
		return nil, ErrMissingDestination
	}

	summary := &Summary{ProcessedCount: len(req.Data), Errors: []ItemError{}}
	for i, item := range req.Data {
		if msg := s.processItem(ctx, req.HFRCode, item); msg != "" {
			summary.Errors = append(summary.Errors, ItemError{
				ItemIndex:  i + 1,
				ClientCode: item.ClientCode,
				VisitID:    item.VisitID,
				Message:    msg,
			})
			continue
		}
		summary.SuccessCount++
	}
	summary.FailureCount = summary.ProcessedCount - summary.SuccessCount

	s.logger.Info().
		Str("hfr_code", req.HFRCode).
		Int("processed", summary.ProcessedCount).
		Int("succeeded", summary.SuccessCount).
		Int("failed", summary.FailureCount).
		Msg("verification results processed")
	return summary, nil
}

// processItem returns the failure message for an item, "" on success.
func (s *Service) processItem(ctx context.Context, hfrCode string, item *Item) string {
	meta, err := s.metadata.LatestMetadata(ctx, hfrCode, item.ClientCode)
	if err != nil {
		s.logger.Error().Err(err).Str("client_code", item.ClientCode).Msg("verification metadata lookup failed")
		return err.Error()
	}
	if meta == nil {
		return msgNoVisit
	}

	event := buildEvent(hfrCode, item, meta, s.now(), s.newID)
	body, err := s.sender.Send(ctx, EventRequest{Events: []Event{event}}, s.dest.URL, s.dest.Username, s.dest.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("client_code", item.ClientCode).Msg("verification event send failed")
		return err.Error()
	}
	if !strings.Contains(strings.ToLower(body), "successful") {
		if blank(body) {
			return msgSendFailed
		}
		return body
	}
	return ""
}
