package verification

import (
	"strings"
	"time"

	"github.com/abt/cbhts-integration/internal/domain/cbhts"
)

const (
	eventType                = "HIV Verification Test Results"
	defaultEntityType        = "ec_client"
	clientApplicationVersion = 2
	clientDatabaseVersion    = 17

	startConcept = "163137AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	endConcept   = "163138AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

// buildEvent attaches one verification result to the client's latest visit
// context.
func buildEvent(hfrCode string, item *Item, meta *cbhts.VerificationMetadata, now time.Time, newID func() string) Event {
	entityType := meta.EntityType
	if blank(entityType) {
		entityType = defaultEntityType
	}

	obs := []Obs{
		timestampObs("start", startConcept, now),
		timestampObs("end", endConcept, now),
		textObs("verification_date", item.VerificationDate),
		textObs("hiv_final_verification_result_code", strings.ToLower(normalizeResult(item.HIVFinalVerificationResultCode))),
	}
	if !blank(item.CTCID) {
		obs = append(obs, textObs("ctc_id", item.CTCID))
	}
	obs = append(obs, textObs("visit_id", item.VisitID))

	return Event{
		EventID:                  newID(),
		EventType:                eventType,
		EntityType:               entityType,
		ProviderID:               meta.ProviderID,
		LocationID:               meta.LocationID,
		Team:                     meta.Team,
		TeamID:                   meta.TeamID,
		BaseEntityID:             meta.BaseEntityID,
		Type:                     "Event",
		FormSubmissionID:         newID(),
		EventDate:                now,
		DateCreated:              now,
		ClientApplicationVersion: clientApplicationVersion,
		ClientDatabaseVersion:    clientDatabaseVersion,
		Duration:                 0,
		Identifiers:              map[string]string{},
		Details:                  map[string]string{"hfr_code": hfrCode},
		Obs:                      obs,
	}
}

func textObs(field string, value string) Obs {
	return Obs{
		FieldType:           "concept",
		FieldDataType:       "text",
		FieldCode:           field,
		Values:              []any{value},
		FormSubmissionField: field,
	}
}

func timestampObs(field, concept string, at time.Time) Obs {
	return Obs{
		FieldType:           "concept",
		FieldDataType:       field,
		FieldCode:           concept,
		Values:              []any{at},
		FormSubmissionField: field,
	}
}
