package cbhts

import (
	"strings"

	"github.com/abt/cbhts-integration/pkg/pagination"
)

// Request selects one page of visits recorded at a facility inside a
// date_created window given in epoch seconds. Fields are pointers so a
// missing value is distinguishable from zero.
type Request struct {
	HFRCode   *string `json:"hfrCode"`
	StartDate *int64  `json:"startDate"`
	EndDate   *int64  `json:"endDate"`
	PageIndex *int    `json:"pageIndex"`
	PageSize  *int    `json:"pageSize"`
}

// Page returns the pagination parameters. Only valid after ValidateRequest
// reported nothing.
func (r *Request) Page() pagination.Params {
	return pagination.Params{PageIndex: *r.PageIndex, PageSize: *r.PageSize}
}

// ValidationError carries every violation found in a request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

// ValidateRequest collects all violations in one pass; nil means valid.
func ValidateRequest(r *Request) []string {
	if r == nil {
		return []string{"Request body is required"}
	}

	var errs []string
	if r.HFRCode == nil || strings.TrimSpace(*r.HFRCode) == "" {
		errs = append(errs, "hfrCode is required")
	}
	if r.StartDate == nil {
		errs = append(errs, "startDate is required")
	}
	if r.EndDate == nil {
		errs = append(errs, "endDate is required")
	}
	if r.StartDate != nil && r.EndDate != nil && *r.StartDate > *r.EndDate {
		errs = append(errs, "startDate must be less than or equal to endDate")
	}
	errs = append(errs, positive("pageIndex", r.PageIndex)...)
	errs = append(errs, positive("pageSize", r.PageSize)...)
	return errs
}

func positive(field string, v *int) []string {
	switch {
	case v == nil:
		return []string{field + " is required"}
	case *v < 1:
		return []string{field + " must be greater than or equal to 1"}
	}
	return nil
}
