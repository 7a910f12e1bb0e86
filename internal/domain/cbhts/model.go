package cbhts

import "strings"

// VisitRecord is one cbhts_services encounter joined with the client,
// provider location and optional household village. Nullable text columns
// materialize as "" and blank is treated as absent.
type VisitRecord struct {
	EventID      string
	BaseEntityID string
	VisitGroup   string
	VisitDate    string
	HTSVisitDate string
	DateCreated  int64

	ProviderID     string
	CounsellorName string

	TestingApproach          string
	VisitType                string
	RecentlyTestedWithHIVST  string
	PreviousHIVSTClientType  string
	PreviousHIVSTTestType    string
	PreviousHIVSTTestResults string
	ClientType               string
	TestingPoint             string
	CounsellingType          string
	TBScreeningOutcome       string
	PostTestCounselling      string
	ResultsDisclosure        string
	CondomsDistributed       string
	MaleCondoms              *int
	FemaleCondoms            *int
	PreventiveServices       string
	FinalHIVTestResult       string

	UniqueID        string
	FirstName       string
	MiddleName      string
	LastName        string
	PhoneNumber     string
	NationalID      string
	VoterID         string
	DriverLicense   string
	Passport        string
	Sex             string
	BirthDate       string
	MaritalStatus   string
	PregnancyStatus string

	HFRCode              string
	Region               string
	District             string
	ProviderCouncilCode  string
	Ward                 string
	HouseholdVillageCode string
	Village              string
}

// Key returns the correlation key used to select this visit's tests.
func (v VisitRecord) Key() string {
	return CorrelationKey(v.VisitGroup, v.BaseEntityID)
}

// TestRecord is one cbhts_tests row.
type TestRecord struct {
	EventID        string
	VisitGroup     string
	BaseEntityID   string
	KitType        string
	BatchNumber    string
	ExpiryDate     string
	Result         string
	SyphilisResult string
	TestType       string
	DateCreated    int64
}

// Key returns the correlation key this test is grouped under.
func (t TestRecord) Key() string {
	return CorrelationKey(t.VisitGroup, t.BaseEntityID)
}

// SelfTestRecord is an HIVST result joined to the kit issuance it was made
// with. Batch and expiry come from the issuance columns selected by KitFor.
type SelfTestRecord struct {
	ResultEventID   string
	ResultEventDate string
	BaseEntityID    string
	KitFor          string
	ResultKitCode   string
	Result          string
	ResultDate      string
	RegisterToHTS   string
	IssueEventID    string
	IssueEventDate  string
	KitBatchNumber  string
	KitExpiryDate   string
}

// VerificationMetadata is the owning context of a client's latest visit at a
// facility.
type VerificationMetadata struct {
	BaseEntityID string
	ProviderID   string
	Team         string
	TeamID       string
	LocationID   string
	EntityType   string
}

// CorrelationKey joins tests to visits by visit group when one is present,
// otherwise by base entity id.
func CorrelationKey(visitGroup, baseEntityID string) string {
	if strings.TrimSpace(visitGroup) != "" {
		return "visit:" + visitGroup
	}
	return "entity:" + baseEntityID
}
