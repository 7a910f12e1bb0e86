package cbhts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/abt/cbhts-integration/internal/platform/db"
	"github.com/abt/cbhts-integration/pkg/pagination"
)

const visitFrom = `FROM {schema}.cbhts_services s
	JOIN {schema}.team_members tm ON tm.identifier = s.provider_id
	JOIN {schema}.tanzania_locations l ON l.location_uuid = tm.location_uuid`

const visitCols = `s.event_id, s.base_entity_id, s.hts_visit_group, s.visit_date, s.hts_visit_date, s.date_created,
	tm.identifier AS provider_id, s.hts_testing_approach, s.hts_visit_type, s.hts_has_the_client_recently_tested_with_hivst,
	s.hts_previous_hivst_client_type, s.hts_previous_hivst_test_type, s.hts_previous_hivst_test_results,
	s.hts_client_type, s.hts_testing_point, s.hts_type_of_counselling_provided, s.hts_clients_tb_screening_outcome,
	s.hts_has_post_test_counselling_been_provided, s.hts_hiv_results_disclosure, s.hts_were_condoms_distributed,
	s.hts_number_of_male_condoms_provided, s.hts_number_of_female_condoms_provided, s.hts_preventive_services,
	s.final_hiv_test_result,
	c.unique_id, c.first_name, c.middle_name, c.last_name, c.phone_number, c.national_id, c.voter_id,
	c.driver_license, c.passport, c.sex, c.birth_date, c.marital_status, c.preg_1yr,
	l.hfr_code, l.region, l.district, l.council_code AS provider_council_code, l.ward,
	hl.village_code AS household_village_code, l.village,
	COALESCE(tm.name, tm.identifier) AS counsellor_name`

const testCols = `t.event_id, t.hts_visit_group, t.base_entity_id, t.type_of_test_kit_used, t.test_kit_batch_number,
	t.test_kit_expire_date, t.test_result, t.syphilis_test_results, t.test_type, t.date_created`

// The issuance columns for batch, expiry and kit code depend on who the kit
// was issued to.
const selfTestSelect = `SELECT r.event_id AS result_event_id, r.event_date AS result_event_date, r.base_entity_id,
	r.kit_for, r.kit_code AS result_kit_code, r.hivst_result, r.result_date, r.register_to_hts,
	k.event_id AS issue_event_id, k.event_date AS issue_event_date,
	CASE
		WHEN r.kit_for = 'client' THEN k.client_kit_batch_number
		WHEN r.kit_for = 'sexual_partner' THEN k.sexual_partner_kit_batch_number
		WHEN r.kit_for IN ('peer_friend','peer_fried') THEN k.peer_friend_kit_batch_number
	END AS kit_batch_number,
	CASE
		WHEN r.kit_for = 'client' THEN k.client_kit_expiry_date
		WHEN r.kit_for = 'sexual_partner' THEN k.sexual_partner_kit_expiry_date
		WHEN r.kit_for IN ('peer_friend','peer_fried') THEN k.peer_friend_kit_expiry_date
	END AS kit_expiry_date
FROM {schema}.hivst_results r
JOIN {schema}.hivst_issue_kits k ON k.base_entity_id = r.base_entity_id
	AND r.kit_code = CASE
		WHEN r.kit_for = 'client' THEN k.kit_code
		WHEN r.kit_for = 'sexual_partner' THEN k.sexual_partner_kit_code
		WHEN r.kit_for IN ('peer_friend','peer_fried') THEN k.peer_friend_kit_code
	END`

// RepoPG implements Fetcher against the OpenSRP PostgreSQL schema.
type RepoPG struct {
	schema string
	sql    *strings.Replacer
}

func NewRepoPG(schema string) (*RepoPG, error) {
	if err := db.ValidateSchema(schema); err != nil {
		return nil, err
	}
	return &RepoPG{schema: schema, sql: strings.NewReplacer("{schema}", schema)}, nil
}

func (r *RepoPG) q(query string) string { return r.sql.Replace(query) }

// args collects bind values and hands out their $n placeholders.
type args struct{ values []any }

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

func (a *args) list(vs []string) string {
	ph := make([]string, len(vs))
	for i, v := range vs {
		ph[i] = a.add(v)
	}
	return strings.Join(ph, ",")
}

// window matches col against the range in seconds or in milliseconds.
func (a *args) window(col string, start, end int64) (string, error) {
	startMs, err := secondsToMillis(start)
	if err != nil {
		return "", err
	}
	endMs, err := secondsToMillis(end)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("((%s BETWEEN %s AND %s) OR (%s BETWEEN %s AND %s))",
		col, a.add(start), a.add(end), col, a.add(startMs), a.add(endMs)), nil
}

func secondsToMillis(s int64) (int64, error) {
	if s > math.MaxInt64/1000 || s < math.MinInt64/1000 {
		return 0, fmt.Errorf("timestamp %d out of range", s)
	}
	return s * 1000, nil
}

func (r *RepoPG) Count(ctx context.Context, q Querier, hfrCode string, start, end int64) (int64, error) {
	var a args
	hfr := a.add(hfrCode)
	window, err := a.window("s.date_created", start, end)
	if err != nil {
		return 0, err
	}
	query := r.q(`SELECT COUNT(*) ` + visitFrom + ` WHERE l.hfr_code = ` + hfr + ` AND ` + window)

	var count int64
	if err := q.QueryRowContext(ctx, query, a.values...).Scan(&count); err != nil {
		return 0, fmt.Errorf("query cbhts services count: %w", err)
	}
	return count, nil
}

func (r *RepoPG) FetchPage(ctx context.Context, q Querier, hfrCode string, start, end int64, page pagination.Params) ([]VisitRecord, error) {
	var a args
	hfr := a.add(hfrCode)
	window, err := a.window("s.date_created", start, end)
	if err != nil {
		return nil, err
	}
	query := r.q(`SELECT ` + visitCols + ` ` + visitFrom + `
	LEFT JOIN {schema}.household h ON h.primary_caregiver = s.base_entity_id
	LEFT JOIN {schema}.tanzania_locations hl ON hl.location_uuid = NULLIF(TRIM(h.location_id), '')
	LEFT JOIN {schema}.client c ON c.base_entity_id = s.base_entity_id
	WHERE l.hfr_code = ` + hfr + ` AND ` + window + `
	ORDER BY s.date_created ASC, s.event_id ASC
	LIMIT ` + a.add(page.Limit()) + ` OFFSET ` + a.add(page.Offset()))

	rows, err := q.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, fmt.Errorf("query cbhts services: %w", err)
	}
	defer rows.Close()

	var visits []VisitRecord
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cbhts service: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cbhts services: %w", err)
	}
	return visits, nil
}

func scanVisit(rows *sql.Rows) (VisitRecord, error) {
	var v VisitRecord
	var created, male, female sql.NullInt64
	err := rows.Scan(
		text(&v.EventID), text(&v.BaseEntityID), text(&v.VisitGroup), text(&v.VisitDate), text(&v.HTSVisitDate), &created,
		text(&v.ProviderID), text(&v.TestingApproach), text(&v.VisitType), text(&v.RecentlyTestedWithHIVST),
		text(&v.PreviousHIVSTClientType), text(&v.PreviousHIVSTTestType), text(&v.PreviousHIVSTTestResults),
		text(&v.ClientType), text(&v.TestingPoint), text(&v.CounsellingType), text(&v.TBScreeningOutcome),
		text(&v.PostTestCounselling), text(&v.ResultsDisclosure), text(&v.CondomsDistributed),
		&male, &female, text(&v.PreventiveServices),
		text(&v.FinalHIVTestResult),
		text(&v.UniqueID), text(&v.FirstName), text(&v.MiddleName), text(&v.LastName), text(&v.PhoneNumber),
		text(&v.NationalID), text(&v.VoterID), text(&v.DriverLicense), text(&v.Passport), text(&v.Sex),
		text(&v.BirthDate), text(&v.MaritalStatus), text(&v.PregnancyStatus),
		text(&v.HFRCode), text(&v.Region), text(&v.District), text(&v.ProviderCouncilCode), text(&v.Ward),
		text(&v.HouseholdVillageCode), text(&v.Village),
		text(&v.CounsellorName),
	)
	v.DateCreated = created.Int64
	v.MaleCondoms = nullableInt(male)
	v.FemaleCondoms = nullableInt(female)
	return v, err
}

func (r *RepoPG) FetchTests(ctx context.Context, q Querier, visits []VisitRecord, start, end int64) (map[string][]TestRecord, error) {
	var groups, entities []string
	for _, v := range visits {
		if strings.TrimSpace(v.VisitGroup) != "" {
			groups = append(groups, v.VisitGroup)
		} else if strings.TrimSpace(v.BaseEntityID) != "" {
			entities = append(entities, v.BaseEntityID)
		}
	}
	groups, entities = distinct(groups), distinct(entities)
	if len(groups) == 0 && len(entities) == 0 {
		return map[string][]TestRecord{}, nil
	}

	var a args
	window, err := a.window("t.date_created", start, end)
	if err != nil {
		return nil, err
	}
	var branches []string
	if len(groups) > 0 {
		branches = append(branches, "t.hts_visit_group IN ("+a.list(groups)+")")
	}
	if len(entities) > 0 {
		branches = append(branches, "(NULLIF(TRIM(t.hts_visit_group), '') IS NULL AND t.base_entity_id IN ("+a.list(entities)+"))")
	}
	query := r.q(`SELECT ` + testCols + ` FROM {schema}.cbhts_tests t
	WHERE ` + window + ` AND (` + strings.Join(branches, " OR ") + `)
	ORDER BY t.date_created ASC, t.event_id ASC`)

	rows, err := q.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, fmt.Errorf("query cbhts tests: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]TestRecord)
	for rows.Next() {
		var t TestRecord
		var created sql.NullInt64
		if err := rows.Scan(text(&t.EventID), text(&t.VisitGroup), text(&t.BaseEntityID), text(&t.KitType),
			text(&t.BatchNumber), text(&t.ExpiryDate), text(&t.Result), text(&t.SyphilisResult),
			text(&t.TestType), &created); err != nil {
			return nil, fmt.Errorf("scan cbhts test: %w", err)
		}
		t.DateCreated = created.Int64
		out[t.Key()] = append(out[t.Key()], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cbhts tests: %w", err)
	}
	return out, nil
}

func (r *RepoPG) FetchSelfTests(ctx context.Context, q Querier, visits []VisitRecord) (map[string][]SelfTestRecord, error) {
	entities := baseEntityIDs(visits)
	if len(entities) == 0 {
		return map[string][]SelfTestRecord{}, nil
	}

	var a args
	query := r.q(selfTestSelect + `
	WHERE r.base_entity_id IN (` + a.list(entities) + `)
	ORDER BY r.base_entity_id ASC, r.result_date ASC, r.event_id ASC`)

	rows, err := q.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, fmt.Errorf("query hivst self tests: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]SelfTestRecord)
	for rows.Next() {
		var s SelfTestRecord
		if err := rows.Scan(text(&s.ResultEventID), text(&s.ResultEventDate), text(&s.BaseEntityID),
			text(&s.KitFor), text(&s.ResultKitCode), text(&s.Result), text(&s.ResultDate), text(&s.RegisterToHTS),
			text(&s.IssueEventID), text(&s.IssueEventDate), text(&s.KitBatchNumber), text(&s.KitExpiryDate)); err != nil {
			return nil, fmt.Errorf("scan hivst self test: %w", err)
		}
		if strings.TrimSpace(s.BaseEntityID) == "" {
			continue
		}
		out[s.BaseEntityID] = append(out[s.BaseEntityID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hivst self tests: %w", err)
	}
	return out, nil
}

// FetchEligibility keeps the latest enrollment per client: newest
// date_created first, then highest event id.
func (r *RepoPG) FetchEligibility(ctx context.Context, q Querier, visits []VisitRecord) (map[string]bool, error) {
	entities := baseEntityIDs(visits)
	if len(entities) == 0 {
		return map[string]bool{}, nil
	}

	var a args
	query := r.q(`SELECT e.base_entity_id, e.eligibility_for_testing
	FROM {schema}.cbhts_enrollment e
	WHERE e.base_entity_id IN (` + a.list(entities) + `)
	ORDER BY e.base_entity_id ASC, e.date_created DESC NULLS LAST, e.event_id DESC`)

	rows, err := q.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, fmt.Errorf("query cbhts enrollment: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id, eligibility string
		if err := rows.Scan(text(&id), text(&eligibility)); err != nil {
			return nil, fmt.Errorf("scan cbhts enrollment: %w", err)
		}
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = ParseEligibility(eligibility)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cbhts enrollment: %w", err)
	}
	return out, nil
}

func (r *RepoPG) LatestMetadataByClientCode(ctx context.Context, q Querier, hfrCode, clientCode string) (*VerificationMetadata, error) {
	var a args
	query := r.q(`SELECT s.base_entity_id, s.provider_id, s.team, s.team_id, s.location_id, s.entity_type
	FROM {schema}.cbhts_services s
	JOIN {schema}.client c ON c.base_entity_id = s.base_entity_id
	JOIN {schema}.team_members tm ON tm.identifier = s.provider_id
	JOIN {schema}.tanzania_locations l ON l.location_uuid = tm.location_uuid
	WHERE c.unique_id = ` + a.add(clientCode) + ` AND l.hfr_code = ` + a.add(hfrCode) + `
	ORDER BY s.date_created DESC NULLS LAST, s.event_id DESC
	LIMIT 1`)

	var m VerificationMetadata
	err := q.QueryRowContext(ctx, query, a.values...).Scan(
		text(&m.BaseEntityID), text(&m.ProviderID), text(&m.Team), text(&m.TeamID), text(&m.LocationID), text(&m.EntityType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query verification metadata: %w", err)
	}
	return &m, nil
}

func baseEntityIDs(visits []VisitRecord) []string {
	var ids []string
	for _, v := range visits {
		if strings.TrimSpace(v.BaseEntityID) != "" {
			ids = append(ids, v.BaseEntityID)
		}
	}
	return distinct(ids)
}

// distinct de-duplicates and sorts so bind order is stable.
func distinct(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// nullText scans a nullable text column into a string, NULL becoming "".
type nullText struct{ dst *string }

func text(dst *string) nullText { return nullText{dst: dst} }

func (t nullText) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*t.dst = ns.String
	return nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
