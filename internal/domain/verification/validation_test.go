package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validItem() *Item {
	return &Item{
		ClientCode:                     "CTC-001",
		VerificationDate:               "2025-12-22",
		HIVFinalVerificationResultCode: "positive",
		CTCID:                          "01-01-0100-000001",
		VisitID:                        "visit-1",
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	assert.Empty(t, ValidateRequest(&Request{HFRCode: "13211-1", Data: []*Item{validItem()}}))
}

func TestValidateRequest_NilBody(t *testing.T) {
	assert.Equal(t, []string{"Request body is required"}, ValidateRequest(nil))
}

func TestValidateRequest_MissingData(t *testing.T) {
	assert.Equal(t, []string{"hfrCode is required", "data is required"}, ValidateRequest(&Request{}))
	assert.Equal(t, []string{"data is required"}, ValidateRequest(&Request{HFRCode: "13211-1", Data: []*Item{}}))
}

func TestValidateRequest_ItemViolations(t *testing.T) {
	bad := &Item{
		ClientCode:                     " ",
		VerificationDate:               "22-12-2025",
		HIVFinalVerificationResultCode: "reactive",
	}
	missing := &Item{ClientCode: "CTC-002"}

	got := ValidateRequest(&Request{HFRCode: "13211-1", Data: []*Item{validItem(), nil, bad, missing}})
	assert.Equal(t, []string{
		"data[1] is required",
		"data[2].clientCode is required",
		"data[2].verificationDate must use yyyy-MM-dd format",
		"data[2].hivFinalVerificationResultCode must be one of: POSITIVE, NEGATIVE, INCONCLUSIVE",
		"data[2].visitId is required",
		"data[3].verificationDate is required",
		"data[3].hivFinalVerificationResultCode is required",
		"data[3].visitId is required",
	}, got)
}

func TestValidateRequest_ResultCodeIsCaseInsensitive(t *testing.T) {
	for _, code := range []string{"NEGATIVE", "negative", " Inconclusive "} {
		item := validItem()
		item.HIVFinalVerificationResultCode = code
		assert.Empty(t, ValidateRequest(&Request{HFRCode: "13211-1", Data: []*Item{item}}), code)
	}
}

func TestValidateRequest_RejectsImpossibleDates(t *testing.T) {
	item := validItem()
	item.VerificationDate = "2025-02-30"
	assert.Equal(t, []string{"data[0].verificationDate must use yyyy-MM-dd format"},
		ValidateRequest(&Request{HFRCode: "13211-1", Data: []*Item{item}}))
}
