package cbhts

import "github.com/abt/cbhts-integration/internal/domain/catalog"

// Dictionary sections.
const (
	SectionMaritalStatus          = "MaritalStatusCode"
	SectionPreviousTestClientType = "PreviousTestClientType"
	SectionClientType             = "ClientType"
	SectionAttendance             = "AttendanceCode"
	SectionTestingTypePrevious    = "TestingTypePrevious"
	SectionPreviousTestResult     = "PreviousTestResult"
	SectionTestingType            = "TestingType"
	SectionCounsellingType        = "CounsellingTypeCode"
	SectionTBScreening            = "TBScreeningDetails"
	SectionDisclosure             = "PostTestCounsellingAndResultsGiven"
	SectionReagentResult          = "ReagentResultFirst"
	SectionReferredTo             = "ReferredToCode"
)

const (
	NotApplicable     = "NOT_APPLICABLE"
	DefaultApproach   = "CBHTS"
	CodeIndexContact  = "INDEX_CONTACT"
	CodeSexualPartner = "SEXUAL_PARTNER"
	CodeCTCClinic     = "CTC_CLINIC"
	CodeReactive      = "REACTIVE"
)

var (
	MaritalAliases = catalog.NewAliases(
		"single", "SINGLE",
		"never_married", "SINGLE",
		"married", "MARRIED_MONOGAMOUS",
		"polygamous", "MARRIED_POLYGAMOUS",
		"cohabiting", "COHABITING",
		"cohabitation", "COHABITING",
		"living_with_partner", "COHABITING",
		"divorced", "SEPARATED_DIVORCED",
		"separated", "SEPARATED_DIVORCED",
		"widowed", "WIDOWED",
		"not_applicable", "NOT_APPLICABLE",
	)

	ClientTypeAliases = catalog.NewAliases(
		"normal_client", "GENERAL_CLIENT",
		"general_client", "GENERAL_CLIENT",
		"index_contact", "INDEX_CONTACT",
		"social_network_contact", "SOCIAL_NETWORK_CONTACT",
		"verification", "VERIFICATION_CLIENT",
		"verification_client", "VERIFICATION_CLIENT",
	)

	AttendanceAliases = catalog.NewAliases(
		"new_client", "NEW_CLIENT",
		"returning", "REPEAT_VISIT",
		"repeat_visit", "REPEAT_VISIT",
		"verification", "VERIFICATION_VISIT",
		"verification_visit", "VERIFICATION_VISIT",
	)

	PreviousClientTypeAliases = catalog.NewAliases(
		"self", "SELF",
		"sexual_partner", "SEXUAL_PARTNER",
		"peer_friend", "PEER_FRIEND",
	)

	TestingTypeAliases = catalog.NewAliases(
		"sto", "SELF_TEST_ORAL",
		"stb", "SELF_TEST_BLOOD",
		"st", "SELF_TEST",
		"initial_test", "INITIAL_TEST",
		"verification_test", "VERIFICATION_TEST",
		"self_test_oral", "SELF_TEST_ORAL",
		"self_test_blood", "SELF_TEST_BLOOD",
	)

	CounsellingTypeAliases = catalog.NewAliases(
		"individual", "INDIVIDUAL",
		"couple", "COUPLE",
		"group", "GROUP",
		"with_parent_or_guardian", "CLIENT_WITH_GUARDIAN",
		"family", "FAMILY",
		"assisted_self_testing", "ASSISTED_SELF_TESTING",
		"unassisted_self_testing", "UNASSISTED_SELF_TESTING",
		"onsite_assisted_self_testing", "ONSITE_ASSISTED_SELF_TESTING",
		"onsite_unassisted_self_testing", "ONSITE_UNASSISTED_SELF_TESTING",
		"offsite_assisted_self_testing", "OFFSITE_ASSISTED_SELF_TESTING",
		"offsite_unassisted_self_testing", "OFFSITE_UNASSISTED_SELF_TESTING",
	)

	TBScreeningAliases = catalog.NewAliases(
		"tb_suspect", "TB_PRESUMPTIVE",
		"screened_negative", "TB_NO_SYMPTOMS",
		"on_tb_treatment", "TB_CONFIRMED",
		"not_screened", "NOT_SCREENED",
	)

	DisclosureAliases = catalog.NewAliases(
		"husband", "SPOUSE",
		"wife", "SPOUSE",
		"partner_who_is_not_wife_or_husband", "NON_SPOUSE_PARTNER",
		"relative", "FAMILY_MEMBER",
		"friend", "FRIEND",
		"religious_leader", "RELIGIOUS_LEADER",
		"others", "OTHER",
		"not_ready_to_share", "NOT_READY_TO_DISCLOSE",
		"parent_guardian", "PARENT_GUARDIAN",
	)

	ReferredToAliases = catalog.NewAliases(
		"prep_services", "PREP_SERVICE",
		"gbv_services", "GBV_SERVICE",
		"none", "NOT_APPLICABLE",
		"others", "OTHER_SERVICE",
		"care_and_treatment_clinic", "CTC_CLINIC",
		"tuberculosis_clinic", "TB_CLINIC",
		"prevention_of_mother_to_child_transmission", "PMTCT_SERVICE",
		"sexual_transmitted_infections_clinic", "STI_CLINIC",
		"sputum_testing_laboratory", "LABORATORY_SERVICE",
		"pep_services", "PEP_SERVICE",
		"voluntary_medical_male_circumcision_vmmc", "VMMC_SERVICE",
		"family_planning", "FAMILY_PLANNING_CLINIC",
		"adolescent_and_youth_people_friendly_services", "YOUTH_FRIENDLY_SERVICE",
	)

	HIVResultAliases = catalog.NewAliases(
		"reactive", "REACTIVE",
		"non_reactive", "NON_REACTIVE",
		"invalid", "INVALID",
		"wastage", "WASTAGE",
		"positive", "REACTIVE",
		"negative", "NON_REACTIVE",
	)
)

// Reagent kit names collapsed to canonical tokens; unknown kits pass through.
var kitNames = map[string]string{
	"MULTITEST":         "DUAL",
	"MULTI_TEST":        "DUAL",
	"DUAL":              "DUAL",
	"HIV_SYPHILIS_DUAL": "DUAL",
	"H_S_DUO":           "DUAL",
	"BIOLINE":           "SD_BIOLINE",
	"SD_BIOLINE":        "SD_BIOLINE",
	"UNIGOLD":           "UNIGOLD",
}

// Reagent test-order labels; REPEAT_FIRST is matched by prefix.
var testTypes = map[string]string{
	"FIRST":                   "FIRST",
	"FIRST_HIV_TEST":          "FIRST",
	"FIRST_TEST":              "FIRST",
	"SECOND":                  "SECOND",
	"SECOND_HIV_TEST":         "SECOND",
	"SECOND_TEST":             "SECOND",
	"UNIGOLD":                 "THIRD",
	"UNIGOLD_HIV_TEST":        "THIRD",
	"UNIGOLD_HIV_TEST_RESULT": "THIRD",
	"THIRD":                   "THIRD",
}

const testTypeConfirmatory = "THIRD"

// HIVST kit recipients; peer_fried is a spelling found in production data.
var kitRecipients = map[string]string{
	"CLIENT":         "SELF",
	"SEXUAL_PARTNER": "SEXUAL_PARTNER",
	"PEER_FRIEND":    "PEER_FRIEND",
	"PEER_FRIED":     "PEER_FRIEND",
}

var selfTestMarkers = []string{"SELF", "HIVST", "STO", "STB", "SELF_TEST"}
