package cbhts

import (
	"strings"

	"github.com/abt/cbhts-integration/internal/domain/catalog"
)

const postTestCounsellingField = "hts_has_post_test_counselling_been_provided"

// Lookup is the reference catalog contract the mapper depends on.
type Lookup interface {
	MapToCode(section, raw string, aliases catalog.Aliases, fallback string) string
	Lookup(section, raw string, aliases catalog.Aliases) (string, bool)
	IsKnownFormOption(fieldKey, option string) bool
}

// Mapper turns fetched visit data into exchange records. It holds no mutable
// state and may be shared between goroutines.
type Mapper struct {
	catalog            Lookup
	platformIDFallback bool
}

type MapperOption func(*Mapper)

// WithPlatformIDFallback identifies clients without any government id by
// their OpenSRP base entity id.
func WithPlatformIDFallback(enabled bool) MapperOption {
	return func(m *Mapper) { m.platformIDFallback = enabled }
}

func NewMapper(cat Lookup, opts ...MapperOption) *Mapper {
	m := &Mapper{catalog: cat}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map builds the exchange record for one visit. tests are the visit's
// correlated lab tests, selfTests the HIVST results of the same client and
// eligibility the enrollment flag, nil when no enrollment is on file.
func (m *Mapper) Map(visit VisitRecord, tests []TestRecord, selfTests []SelfTestRecord, eligibility *bool) OutputRecord {
	reagents := m.mapReagentTesting(tests)

	return OutputRecord{
		HTCApproach: mapApproach(visit.TestingApproach),
		VisitDate:   optional(NormalizeDate(firstNonBlank(visit.HTSVisitDate, visit.VisitDate))),
		Counsellor: Counsellor{
			CounsellorID:   visit.ProviderID,
			CounsellorName: firstNonBlank(visit.CounsellorName, visit.ProviderID),
		},
		ClientCode:           firstNonBlank(visit.UniqueID, visit.BaseEntityID),
		CellPhoneNumber:      optional(NormalizePhone(visit.PhoneNumber)),
		ClientIdentification: m.mapIdentification(visit),
		ClientName: ClientName{
			FirstName:  visit.FirstName,
			MiddleName: visit.MiddleName,
			LastName:   visit.LastName,
		},
		Demographics:         m.mapDemographics(visit),
		Residence:            mapResidence(visit),
		ClientClassification: m.mapClassification(visit, eligibility),
		TestingHistory: TestingHistory{
			TestingTypePrevious: m.catalog.MapToCode(SectionTestingTypePrevious, visit.PreviousHIVSTTestType, TestingTypeAliases, NotApplicable),
			PreviousTestResult:  m.catalog.MapToCode(SectionPreviousTestResult, visit.PreviousHIVSTTestResults, HIVResultAliases, NotApplicable),
		},
		CurrentTesting:     m.mapCurrentTesting(visit),
		SelfTesting:        m.mapSelfTesting(visit, selfTests),
		ReagentTesting:     reagents,
		PreventionServices: m.mapPrevention(visit),
		ReferralAndOutcome: m.mapReferral(visit, reagents),
		Remarks:            "Generated from cbhts_services event " + visit.EventID,
		CreatedAt:          ToEpochSeconds(visit.DateCreated),
	}
}

func mapApproach(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return DefaultApproach
	}
	return catalog.Normalize(raw)
}

func (m *Mapper) mapIdentification(v VisitRecord) ClientIdentification {
	switch {
	case strings.TrimSpace(v.NationalID) != "":
		return ClientIdentification{Type: "NIDA", Code: strings.TrimSpace(v.NationalID)}
	case strings.TrimSpace(v.VoterID) != "":
		return ClientIdentification{Type: "VOTER_ID", Code: strings.TrimSpace(v.VoterID)}
	case strings.TrimSpace(v.DriverLicense) != "":
		return ClientIdentification{Type: "DRIVER_LICENSE", Code: strings.TrimSpace(v.DriverLicense)}
	case strings.TrimSpace(v.Passport) != "":
		return ClientIdentification{Type: "PASSPORT", Code: strings.TrimSpace(v.Passport)}
	case m.platformIDFallback && strings.TrimSpace(v.BaseEntityID) != "":
		return ClientIdentification{Type: "OPENSRP_ID", Code: strings.TrimSpace(v.BaseEntityID)}
	}
	return ClientIdentification{}
}

func (m *Mapper) mapDemographics(v VisitRecord) Demographics {
	return Demographics{
		SexCode:             v.Sex,
		DateOfBirth:         optional(NormalizeDate(v.BirthDate)),
		MaritalStatusCode:   m.catalog.MapToCode(SectionMaritalStatus, v.MaritalStatus, MaritalAliases, NotApplicable),
		PregnancyStatusCode: pregnancyStatus(v.Sex),
		SMSConsent:          strings.TrimSpace(v.PhoneNumber) != "",
	}
}

// pregnancyStatus is derived from sex only; the recorded pregnancy flag is
// not trusted.
func pregnancyStatus(sex string) string {
	switch catalog.Normalize(sex) {
	case "MALE", "M":
		return NotApplicable
	}
	return "UNKNOWN"
}

func mapResidence(v VisitRecord) Residence {
	r := Residence{
		Region:   strings.TrimSpace(v.Region),
		District: strings.TrimSpace(v.District),
	}
	if village := strings.TrimSpace(v.HouseholdVillageCode); village != "" {
		r.VillageStreet = village
	} else {
		r.Council = strings.TrimSpace(v.ProviderCouncilCode)
	}
	return r
}

func (m *Mapper) mapClassification(v VisitRecord, eligibility *bool) ClientClassification {
	clientType := m.catalog.MapToCode(SectionClientType, v.ClientType, ClientTypeAliases, NotApplicable)

	relationship := NotApplicable
	if clientType == CodeIndexContact {
		relationship = CodeSexualPartner
	}

	eligible := true
	if eligibility != nil {
		eligible = *eligibility
	}

	return ClientClassification{
		PreviousTestClientType:  m.catalog.MapToCode(SectionPreviousTestClientType, v.PreviousHIVSTClientType, PreviousClientTypeAliases, NotApplicable),
		ClientType:              clientType,
		AttendanceCode:          m.catalog.MapToCode(SectionAttendance, v.VisitType, AttendanceAliases, NotApplicable),
		RelationshipIndexClient: relationship,
		EligibleForTesting:      eligible,
	}
}

func (m *Mapper) mapCurrentTesting(v VisitRecord) CurrentTesting {
	testingType := "initial_test"
	if strings.Contains(catalog.Normalize(v.ClientType), "VERIFICATION") {
		testingType = "verification_test"
	}

	disclosure := make([]Disclosure, 0)
	seen := make(map[string]struct{})
	for _, raw := range splitValues(v.ResultsDisclosure) {
		code := m.catalog.MapToCode(SectionDisclosure, raw, DisclosureAliases, NotApplicable)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		disclosure = append(disclosure, Disclosure{DisclosureCode: code})
	}

	return CurrentTesting{
		TestingType:                        m.catalog.MapToCode(SectionTestingType, testingType, TestingTypeAliases, NotApplicable),
		CounsellingTypeCode:                m.catalog.MapToCode(SectionCounsellingType, v.CounsellingType, CounsellingTypeAliases, NotApplicable),
		TBScreeningDetails:                 m.catalog.MapToCode(SectionTBScreening, v.TBScreeningOutcome, TBScreeningAliases, NotApplicable),
		PostTestCounsellingAndResultsGiven: m.toBoolean(v.PostTestCounselling),
		Disclosure:                         disclosure,
	}
}

// toBoolean falls back to the form vocabulary for tokens ParseBool does not
// recognise; anything still ambiguous is false.
func (m *Mapper) toBoolean(raw string) bool {
	if value, ok := ParseBool(raw); ok {
		return value
	}
	if strings.TrimSpace(raw) == "" {
		return false
	}
	return m.catalog.IsKnownFormOption(postTestCounsellingField, raw) && catalog.Normalize(raw) == "YES"
}

func (m *Mapper) mapSelfTesting(v VisitRecord, selfTests []SelfTestRecord) []SelfTest {
	out := make([]SelfTest, 0)
	visitDate := NormalizeDate(v.VisitDate)
	if visitDate == "" {
		return out
	}
	for _, st := range selfTests {
		issued := NormalizeDate(st.IssueEventDate)
		if issued == "" || issued != visitDate {
			continue
		}
		out = append(out, SelfTest{
			SelfTestKitCode:    st.ResultKitCode,
			SelfTestBatchNo:    st.KitBatchNumber,
			SelfTestExpiryDate: optional(NormalizeDate(st.KitExpiryDate)),
			SelfTestKitName:    optional(kitRecipient(st.KitFor)),
			SelfTestingResults: m.catalog.MapToCode(SectionPreviousTestResult, st.Result, HIVResultAliases, NotApplicable),
		})
	}
	return out
}

func kitRecipient(kitFor string) string {
	token := catalog.Normalize(kitFor)
	if name, ok := kitRecipients[token]; ok {
		return name
	}
	return token
}

func isSelfTest(t TestRecord) bool {
	testType := catalog.Normalize(t.TestType)
	for _, marker := range selfTestMarkers {
		if strings.Contains(testType, marker) {
			return true
		}
	}
	return strings.Contains(catalog.Normalize(t.KitType), "SELF")
}

func (m *Mapper) mapReagentTesting(tests []TestRecord) []ReagentTest {
	out := make([]ReagentTest, 0, len(tests))
	for _, t := range tests {
		if isSelfTest(t) {
			continue
		}
		out = append(out, ReagentTest{
			ReagentBatch:   t.BatchNumber,
			ReagentExpiry:  optional(NormalizeDate(t.ExpiryDate)),
			ReagentTest:    optional(kitName(t.KitType)),
			TestType:       optional(testType(t.TestType)),
			ReagentResult:  m.catalog.MapToCode(SectionReagentResult, t.Result, HIVResultAliases, NotApplicable),
			SyphilisResult: optional(syphilisResult(t.SyphilisResult)),
		})
	}
	return out
}

func kitName(raw string) string {
	token := catalog.Normalize(raw)
	if name, ok := kitNames[token]; ok {
		return name
	}
	return token
}

func testType(raw string) string {
	token := catalog.Normalize(raw)
	if name, ok := testTypes[token]; ok {
		return name
	}
	if strings.HasPrefix(token, "REPEAT_OF_FIRST") || strings.HasPrefix(token, "REPEAT_FIRST") {
		return "REPEAT_FIRST"
	}
	return token
}

func syphilisResult(raw string) string {
	token := catalog.Normalize(raw)
	switch {
	case token == "":
		return ""
	case strings.Contains(token, "POSITIVE") || token == "R":
		return "POSITIVE"
	case strings.Contains(token, "NEGATIVE") || token == "NR":
		return "NEGATIVE"
	}
	return token
}

func (m *Mapper) mapPrevention(v VisitRecord) PreventionServices {
	return PreventionServices{
		CondomGiven:         m.toBoolean(v.CondomsDistributed),
		CondomsIssuedMale:   v.MaleCondoms,
		CondomsIssuedFemale: v.FemaleCondoms,
	}
}

// mapReferral takes the first preventive service that resolves to a referral
// code. A reactive confirmatory test always refers to the CTC clinic.
func (m *Mapper) mapReferral(v VisitRecord, reagents []ReagentTest) []Referral {
	code := NotApplicable
	for _, service := range splitValues(v.PreventiveServices) {
		if resolved, ok := m.catalog.Lookup(SectionReferredTo, service, ReferredToAliases); ok {
			code = resolved
			break
		}
	}

	for _, r := range reagents {
		if r.TestType != nil && *r.TestType == testTypeConfirmatory && r.ReagentResult == CodeReactive {
			code = CodeCTCClinic
			break
		}
	}

	return []Referral{{ReferredToCode: code, ToFacility: v.HFRCode}}
}
