package catalog

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]+`)

// Normalize turns a free-text or coded value into the token form used for every
// catalog comparison: trimmed, upper-cased, runs of anything outside [A-Z0-9]
// collapsed to a single underscore, with no leading or trailing underscore.
func Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	upper := cases.Upper(language.Und).String(trimmed)
	return strings.Trim(nonAlphanumeric.ReplaceAllString(upper, "_"), "_")
}

// Entry is one dictionary row: the exchange code and the source label it is
// known by.
type Entry struct {
	Code  string
	Value string
}

type section struct {
	byCode  map[string]string
	byValue map[string]string
}

func newSection() *section {
	return &section{byCode: make(map[string]string), byValue: make(map[string]string)}
}

func (s *section) add(e Entry) {
	s.byCode[Normalize(e.Code)] = e.Code
	s.byValue[Normalize(e.Value)] = e.Code
}

func (s *section) resolve(token string) (string, bool) {
	if code, ok := s.byCode[token]; ok {
		return code, true
	}
	code, ok := s.byValue[token]
	return code, ok
}

// Catalog is the read-only reference data shared by every mapping call. It is
// built once and never mutated afterwards, so concurrent readers need no locking.
type Catalog struct {
	sections map[string]*section
	names    map[string]string
	options  map[string]map[string]struct{}
}

// New builds a catalog from in-memory dictionary sections and a field-key to
// option-keys vocabulary.
func New(entries map[string][]Entry, vocabulary map[string][]string) *Catalog {
	c := empty()
	for name, rows := range entries {
		for _, e := range rows {
			c.addEntry(name, e)
		}
	}
	for field, opts := range vocabulary {
		for _, opt := range opts {
			c.addOption(field, opt)
		}
	}
	return c
}

func empty() *Catalog {
	return &Catalog{
		sections: make(map[string]*section),
		names:    make(map[string]string),
		options:  make(map[string]map[string]struct{}),
	}
}

func (c *Catalog) addEntry(sectionName string, e Entry) {
	key := Normalize(sectionName)
	s, ok := c.sections[key]
	if !ok {
		s = newSection()
		c.sections[key] = s
		c.names[key] = strings.TrimSpace(sectionName)
	}
	s.add(e)
}

func (c *Catalog) addOption(fieldKey, option string) {
	field := Normalize(fieldKey)
	set, ok := c.options[field]
	if !ok {
		set = make(map[string]struct{})
		c.options[field] = set
	}
	set[Normalize(option)] = struct{}{}
}

// MapToCode resolves raw within the named section, first as a source code,
// then as an exchange value, then through aliases. Blank input, an unknown
// section or a miss all yield fallback.
func (c *Catalog) MapToCode(sectionName, raw string, aliases Aliases, fallback string) string {
	if code, ok := c.Lookup(sectionName, raw, aliases); ok {
		return code
	}
	return fallback
}

// Lookup is MapToCode without a fallback: ok is false on a miss.
func (c *Catalog) Lookup(sectionName, raw string, aliases Aliases) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	s, ok := c.sections[Normalize(sectionName)]
	if !ok {
		return "", false
	}

	token := Normalize(raw)
	if code, ok := s.resolve(token); ok {
		return code, true
	}

	alias, ok := aliases[token]
	if !ok {
		return "", false
	}
	return s.resolve(Normalize(alias))
}

// IsKnownFormOption reports whether option is one of the enumerated choices
// recorded for fieldKey in the form definitions.
func (c *Catalog) IsKnownFormOption(fieldKey, option string) bool {
	if strings.TrimSpace(fieldKey) == "" || strings.TrimSpace(option) == "" {
		return false
	}
	set, ok := c.options[Normalize(fieldKey)]
	if !ok {
		return false
	}
	_, ok = set[Normalize(option)]
	return ok
}

// Sections returns the section names in sorted order.
func (c *Catalog) Sections() []string {
	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarises a loaded catalog.
type Stats struct {
	Entries map[string]int
	Fields  int
	Options int
}

// Stats counts dictionary codes per section and vocabulary size.
func (c *Catalog) Stats() Stats {
	st := Stats{Entries: make(map[string]int, len(c.sections))}
	for key, s := range c.sections {
		st.Entries[c.names[key]] = len(s.byCode)
	}
	st.Fields = len(c.options)
	for _, set := range c.options {
		st.Options += len(set)
	}
	return st
}
