package catalog

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

//go:embed resources
var resources embed.FS

const (
	defaultDictionary = "resources/CTC2HTSVariables_Integration_mappings.csv"
	defaultFormsDir   = "resources/forms"
)

// LoadOptions points the loader at reference data on disk. Empty fields fall
// back to the resources compiled into the binary.
type LoadOptions struct {
	DictionaryPath string
	FormsDir       string
}

// LoadError reports reference data that could not be read or parsed. The
// service must not start when loading fails.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load reference catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the code dictionary (CSV or XLSX) and the form definitions.
func Load(opts LoadOptions) (*Catalog, error) {
	c := empty()

	dictFS, dictPath := fs.FS(resources), defaultDictionary
	if opts.DictionaryPath != "" {
		dictFS, dictPath = os.DirFS(filepath.Dir(opts.DictionaryPath)), filepath.Base(opts.DictionaryPath)
	}
	rows, err := readDictionary(dictFS, dictPath)
	if err != nil {
		return nil, &LoadError{Source: describe(opts.DictionaryPath, dictPath), Err: err}
	}
	if err := c.loadDictionaryRows(rows); err != nil {
		return nil, &LoadError{Source: describe(opts.DictionaryPath, dictPath), Err: err}
	}

	formsFS, formsDir := fs.FS(resources), defaultFormsDir
	if opts.FormsDir != "" {
		formsFS, formsDir = os.DirFS(opts.FormsDir), "."
	}
	if err := c.loadForms(formsFS, formsDir); err != nil {
		return nil, &LoadError{Source: describe(opts.FormsDir, formsDir), Err: err}
	}

	return c, nil
}

func describe(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return "embedded " + fallback
}

func readDictionary(fsys fs.FS, name string) ([][]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return readXLSX(data)
	case ".csv", "":
		return readCSV(data)
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", path.Ext(name))
	}
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, record)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// loadDictionaryRows groups rows under section headers. Columns are
// [_, code, description, exchange value]; header and label rows are skipped.
func (c *Catalog) loadDictionaryRows(rows [][]string) error {
	current := ""
	added := 0
	for _, row := range rows {
		code := column(row, 1)
		description := column(row, 2)
		value := column(row, 3)

		if i := strings.Index(code, ":"); i >= 0 {
			current = strings.TrimSpace(code[:i])
			continue
		}
		if code != "" && description == "" && value == "" {
			current = code
			continue
		}
		if current == "" || code == "" || value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(code), "code") || strings.EqualFold(value, "Integration Values") {
			continue
		}

		c.addEntry(current, Entry{Code: code, Value: value})
		added++
	}
	if added == 0 {
		return fmt.Errorf("dictionary contains no code rows")
	}
	return nil
}

func column(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c *Catalog) loadForms(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(path.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return err
		}
		var form any
		if err := json.Unmarshal(data, &form); err != nil {
			return fmt.Errorf("parse form %s: %w", name, err)
		}
		c.collectFieldOptions(form)
	}
	return nil
}

// collectFieldOptions walks a form definition and records the option keys of
// every node that has both a string "key" and an "options" array.
func (c *Catalog) collectFieldOptions(node any) {
	switch n := node.(type) {
	case map[string]any:
		key, hasKey := n["key"].(string)
		opts, hasOpts := n["options"].([]any)
		if hasKey && hasOpts {
			field := Normalize(key)
			if _, ok := c.options[field]; !ok {
				c.options[field] = make(map[string]struct{})
			}
			for _, o := range opts {
				obj, ok := o.(map[string]any)
				if !ok {
					continue
				}
				if optKey, ok := obj["key"].(string); ok {
					c.options[field][Normalize(optKey)] = struct{}{}
				}
			}
		}
		for _, child := range n {
			c.collectFieldOptions(child)
		}
	case []any:
		for _, child := range n {
			c.collectFieldOptions(child)
		}
	}
}
