// Package bqexport streams medium assignments into a BigQuery table so they
// can be joined against other CCLE annotations in the warehouse.
package bqexport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/pfx"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// BatchSize is the number of rows sent per streaming insert.
var BatchSize = 500

type WrappedBigQuery struct {
	Context  context.Context
	Client   *bigquery.Client
	Project  string
	Database string
}

// TableRef names a table as project.dataset.table.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

func ParseTableRef(s string) (TableRef, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return TableRef{}, fmt.Errorf("table %q: expected project.dataset.table, got %d parts", s, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return TableRef{}, fmt.Errorf("table %q: empty name component", s)
		}
	}

	return TableRef{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}

func (r TableRef) String() string {
	return r.Project + "." + r.Dataset + "." + r.Table
}

// AssignmentRow is the warehouse form of a medium.Assignment.
type AssignmentRow struct {
	Raw     string              `bigquery:"raw"`
	Cleaned string              `bigquery:"cleaned"`
	Label   bigquery.NullString `bigquery:"label"`
	Mapped  bool                `bigquery:"mapped"`
	Matches []string            `bigquery:"matches"`
}

func NewRows(assignments []medium.Assignment) []*AssignmentRow {
	out := make([]*AssignmentRow, 0, len(assignments))
	for _, a := range assignments {
		matches := a.Matches
		if matches == nil {
			matches = []string{}
		}
		out = append(out, &AssignmentRow{
			Raw:     a.Raw,
			Cleaned: a.Cleaned,
			Label:   bigquery.NullString{StringVal: a.Label.String, Valid: a.Label.Valid},
			Mapped:  a.Mapped(),
			Matches: matches,
		})
	}

	return out
}

// FilterNew drops rows whose raw text is already loaded.
func FilterNew(rows []*AssignmentRow, loaded map[string]struct{}) []*AssignmentRow {
	out := make([]*AssignmentRow, 0, len(rows))
	for _, r := range rows {
		if _, exists := loaded[r.Raw]; exists {
			continue
		}
		out = append(out, r)
	}

	return out
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}

	return strings.Contains(err.Error(), "Error 404")
}

// EnsureTable creates the table with the AssignmentRow schema if it does not
// exist yet.
func (wbq *WrappedBigQuery) EnsureTable(table string) error {
	t := wbq.Client.DatasetInProject(wbq.Project, wbq.Database).Table(table)

	_, err := t.Metadata(wbq.Context)
	if err == nil {
		return nil
	} else if !isNotFound(err) {
		return pfx.Err(err)
	}

	schema, err := bigquery.InferSchema(AssignmentRow{})
	if err != nil {
		return pfx.Err(err)
	}

	if err := t.Create(wbq.Context, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// LoadedRaw returns the raw medium strings already present in table. A
// missing table yields an empty set.
func (wbq *WrappedBigQuery) LoadedRaw(table string) (map[string]struct{}, error) {
	loaded := make(map[string]struct{})

	query := wbq.Client.Query(fmt.Sprintf("SELECT DISTINCT raw FROM `%s.%s.%s`", wbq.Project, wbq.Database, table))
	itr, err := query.Read(wbq.Context)
	if err != nil && isNotFound(err) {
		return loaded, nil
	} else if err != nil {
		return nil, pfx.Err(err)
	}

	for {
		var values struct {
			Raw string `bigquery:"raw"`
		}
		err := itr.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}
		loaded[values.Raw] = struct{}{}
	}

	return loaded, nil
}

// Upload streams the assignments not yet present in table and returns how
// many rows were sent.
func (wbq *WrappedBigQuery) Upload(table string, assignments []medium.Assignment) (int, error) {
	if err := wbq.EnsureTable(table); err != nil {
		return 0, err
	}

	loaded, err := wbq.LoadedRaw(table)
	if err != nil {
		return 0, err
	}

	rows := FilterNew(NewRows(assignments), loaded)
	inserter := wbq.Client.DatasetInProject(wbq.Project, wbq.Database).Table(table).Inserter()
	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := inserter.Put(wbq.Context, rows[start:end]); err != nil {
			return start, pfx.Err(err)
		}
	}

	return len(rows), nil
}
