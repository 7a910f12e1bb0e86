package verification

import "time"

// Request carries lab verification results for clients seen at one facility.
type Request struct {
	HFRCode string  `json:"hfrCode"`
	Data    []*Item `json:"data"`
}

type Item struct {
	ClientCode                     string `json:"clientCode"`
	VerificationDate               string `json:"verificationDate"`
	HIVFinalVerificationResultCode string `json:"hivFinalVerificationResultCode"`
	CTCID                          string `json:"ctcId,omitempty"`
	VisitID                        string `json:"visitId"`
}

// Summary reports the outcome of a batch. Failed items never abort it.
type Summary struct {
	ProcessedCount int         `json:"processedCount"`
	SuccessCount   int         `json:"successCount"`
	FailureCount   int         `json:"failureCount"`
	Errors         []ItemError `json:"errors"`
}

// ItemError describes one failed item; ItemIndex is 1-based.
type ItemError struct {
	ItemIndex  int    `json:"itemIndex"`
	ClientCode string `json:"clientCode"`
	VisitID    string `json:"visitId"`
	Message    string `json:"message"`
}

// EventRequest is the body accepted by the OpenSRP event/add endpoint.
type EventRequest struct {
	Events []Event `json:"events"`
}

type Event struct {
	EventID                  string            `json:"eventId"`
	EventType                string            `json:"eventType"`
	EntityType               string            `json:"entityType"`
	ProviderID               string            `json:"providerId"`
	LocationID               string            `json:"locationId"`
	Team                     string            `json:"team"`
	TeamID                   string            `json:"teamId"`
	BaseEntityID             string            `json:"baseEntityId"`
	Type                     string            `json:"type"`
	FormSubmissionID         string            `json:"formSubmissionId"`
	EventDate                time.Time         `json:"eventDate"`
	DateCreated              time.Time         `json:"dateCreated"`
	ClientApplicationVersion int               `json:"clientApplicationVersion"`
	ClientDatabaseVersion    int               `json:"clientDatabaseVersion"`
	Duration                 int               `json:"duration"`
	Identifiers              map[string]string `json:"identifiers"`
	Details                  map[string]string `json:"details"`
	Obs                      []Obs             `json:"obs"`
}

type Obs struct {
	FieldType           string `json:"fieldType"`
	FieldDataType       string `json:"fieldDataType"`
	FieldCode           string `json:"fieldCode"`
	ParentCode          string `json:"parentCode"`
	Values              []any  `json:"values"`
	Set                 []any  `json:"set,omitempty"`
	HumanReadableValues []any  `json:"humanReadableValues,omitempty"`
	FormSubmissionField string `json:"formSubmissionField"`
}
