package verification

import (
	"fmt"
	"strings"
	"time"
)

var allowedResults = map[string]bool{
	"POSITIVE":     true,
	"NEGATIVE":     true,
	"INCONCLUSIVE": true,
}

// ValidationError carries every violation found in a request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

// ValidateRequest collects all violations; nil means valid. Item indexes in
// messages are 0-based.
func ValidateRequest(r *Request) []string {
	if r == nil {
		return []string{"Request body is required"}
	}

	var errs []string
	if blank(r.HFRCode) {
		errs = append(errs, "hfrCode is required")
	}
	if len(r.Data) == 0 {
		return append(errs, "data is required")
	}

	for i, item := range r.Data {
		prefix := fmt.Sprintf("data[%d]", i)
		if item == nil {
			errs = append(errs, prefix+" is required")
			continue
		}
		if blank(item.ClientCode) {
			errs = append(errs, prefix+".clientCode is required")
		}
		switch {
		case blank(item.VerificationDate):
			errs = append(errs, prefix+".verificationDate is required")
		case !isISODate(item.VerificationDate):
			errs = append(errs, prefix+".verificationDate must use yyyy-MM-dd format")
		}
		switch {
		case blank(item.HIVFinalVerificationResultCode):
			errs = append(errs, prefix+".hivFinalVerificationResultCode is required")
		case !allowedResults[normalizeResult(item.HIVFinalVerificationResultCode)]:
			errs = append(errs, prefix+".hivFinalVerificationResultCode must be one of: POSITIVE, NEGATIVE, INCONCLUSIVE")
		}
		if blank(item.VisitID) {
			errs = append(errs, prefix+".visitId is required")
		}
	}
	return errs
}

func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func normalizeResult(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
