package cbhts

// OutputRecord is the HTS exchange payload produced for one visit. JSON
// names are the wire contract of the downstream platform.
type OutputRecord struct {
	HTCApproach          string               `json:"htcApproach"`
	VisitDate            *string              `json:"visitDate"`
	Counsellor           Counsellor           `json:"counsellor"`
	ClientCode           string               `json:"clientCode"`
	CellPhoneNumber      *string              `json:"cellPhoneNumber"`
	ClientIdentification ClientIdentification `json:"clientIdentification"`
	ClientName           ClientName           `json:"clientName"`
	Demographics         Demographics         `json:"demographics"`
	Residence            Residence            `json:"residence"`
	ClientClassification ClientClassification `json:"clientClassification"`
	TestingHistory       TestingHistory       `json:"testingHistory"`
	CurrentTesting       CurrentTesting       `json:"currentTesting"`
	SelfTesting          []SelfTest           `json:"selfTesting"`
	ReagentTesting       []ReagentTest        `json:"reagentTesting"`
	PreventionServices   PreventionServices   `json:"preventionServices"`
	ReferralAndOutcome   []Referral           `json:"referralAndOutcome"`
	Remarks              string               `json:"remarks"`
	CreatedAt            int64                `json:"createdAt"`
}

type Counsellor struct {
	CounsellorID   string `json:"counsellorID"`
	CounsellorName string `json:"counsellorName"`
}

// ClientIdentification renders as {} when no identifier is known.
type ClientIdentification struct {
	Type string `json:"clientUniqueIdentifierType,omitempty"`
	Code string `json:"clientUniqueIdentifierCode,omitempty"`
}

// Empty reports whether no identifier was selected.
func (c ClientIdentification) Empty() bool {
	return c.Type == "" && c.Code == ""
}

type ClientName struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

type Demographics struct {
	SexCode             string  `json:"sexCode"`
	DateOfBirth         *string `json:"dateOfBirth"`
	MaritalStatusCode   string  `json:"maritalStatusCode"`
	PregnancyStatusCode string  `json:"pregnancyStatusCode"`
	SMSConsent          bool    `json:"smsConsent"`
}

// Residence carries at most one of Council and VillageStreet.
type Residence struct {
	Region        string `json:"region,omitempty"`
	District      string `json:"district,omitempty"`
	Council       string `json:"council,omitempty"`
	VillageStreet string `json:"villageStreet,omitempty"`
}

type ClientClassification struct {
	PreviousTestClientType  string `json:"previousTestClientType"`
	ClientType              string `json:"clientType"`
	AttendanceCode          string `json:"attendanceCode"`
	RelationshipIndexClient string `json:"relationshipIndexClient"`
	EligibleForTesting      bool   `json:"eligibleForTesting"`
}

type TestingHistory struct {
	TestingTypePrevious string `json:"testingTypePrevious"`
	PreviousTestResult  string `json:"previousTestResult"`
}

type CurrentTesting struct {
	TestingType                        string       `json:"testingType"`
	CounsellingTypeCode                string       `json:"counsellingTypeCode"`
	TBScreeningDetails                 string       `json:"tbScreeningDetails"`
	PostTestCounsellingAndResultsGiven bool         `json:"postTestCounsellingAndResultsGiven"`
	Disclosure                         []Disclosure `json:"disclosure"`
}

type Disclosure struct {
	DisclosureCode string `json:"disclosureCode"`
}

type SelfTest struct {
	SelfTestKitCode    string  `json:"selfTestKitCode"`
	SelfTestBatchNo    string  `json:"selfTestBatchNo"`
	SelfTestExpiryDate *string `json:"selfTestExpiryDate"`
	SelfTestKitName    *string `json:"selfTestKitName"`
	SelfTestingResults string  `json:"selfTestingResults"`
}

type ReagentTest struct {
	ReagentBatch   string  `json:"reagentBatch"`
	ReagentExpiry  *string `json:"reagentExpiry"`
	ReagentTest    *string `json:"reagentTest"`
	TestType       *string `json:"testType"`
	ReagentResult  string  `json:"reagentResult"`
	SyphilisResult *string `json:"syphilisResult"`
}

type PreventionServices struct {
	CondomGiven         bool `json:"condomGiven"`
	CondomsIssuedMale   *int `json:"condomsIssuedMale"`
	CondomsIssuedFemale *int `json:"condomsIssuedFemale"`
}

type Referral struct {
	ReferredToCode string `json:"referredToCode"`
	ToFacility     string `json:"toFacility"`
}
