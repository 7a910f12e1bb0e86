package cbhts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abt/cbhts-integration/pkg/pagination"
)

func TestValidateRequest_Valid(t *testing.T) {
	assert.Empty(t, ValidateRequest(validRequest()))

	req := validRequest()
	req.EndDate = req.StartDate
	assert.Empty(t, ValidateRequest(req), "equal bounds are allowed")
}

func TestValidateRequest_NilBody(t *testing.T) {
	assert.Equal(t, []string{"Request body is required"}, ValidateRequest(nil))
}

func TestValidateRequest_CollectsEveryViolation(t *testing.T) {
	assert.Equal(t, []string{
		"hfrCode is required",
		"startDate is required",
		"endDate is required",
		"pageIndex is required",
		"pageSize is required",
	}, ValidateRequest(&Request{}))
}

func TestValidateRequest_RangeAndPaging(t *testing.T) {
	req := validRequest()
	req.HFRCode = ptr("   ")
	req.StartDate = ptr(int64(200))
	req.EndDate = ptr(int64(100))
	req.PageIndex = ptr(0)
	req.PageSize = ptr(-5)

	assert.Equal(t, []string{
		"hfrCode is required",
		"startDate must be less than or equal to endDate",
		"pageIndex must be greater than or equal to 1",
		"pageSize must be greater than or equal to 1",
	}, ValidateRequest(req))
}

func TestRequest_Page(t *testing.T) {
	req := validRequest()
	req.PageIndex = ptr(3)
	req.PageSize = ptr(50)
	assert.Equal(t, pagination.Params{PageIndex: 3, PageSize: 50}, req.Page())
	assert.Equal(t, 100, req.Page().Offset())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Details: []string{"hfrCode is required", "pageSize is required"}}
	assert.Equal(t, "invalid request: hfrCode is required; pageSize is required", err.Error())
}
