package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-json"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
	"github.com/axellelanca/visitorpulse/internal/repository"
)

// Column is one named value of a result row.
type Column struct {
	Name  string
	Value any
}

// Row is a result row whose JSON object keeps the column order of the query.
type Row []Column

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(col.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// QueryResult is either a list of rows or an error message, never both.
type QueryResult struct {
	Results []Row
	Error   string
}

// MarshalJSON encodes {"error": "..."} on failure and {"results": [...]} otherwise.
func (q QueryResult) MarshalJSON() ([]byte, error) {
	if q.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{q.Error})
	}
	results := q.Results
	if results == nil {
		results = []Row{}
	}
	return json.Marshal(struct {
		Results []Row `json:"results"`
	}{results})
}

// QueryService runs ad-hoc read queries behind a lexical SELECT allow-list.
// The prefix check is the only safety boundary: statements starting with "select" run as given.
type QueryService struct {
	repo repository.QueryRepository
}

// NewQueryService creates and returns a new instance of QueryService.
func NewQueryService(repo repository.QueryRepository) *QueryService {
	return &QueryService{repo: repo}
}

// ValidateQuery checks that sql is a string whose trimmed, lower-cased form starts with "select".
func ValidateQuery(sql any) (string, error) {
	text, ok := sql.(string)
	if !ok {
		return "", customerrors.ErrInvalidSQLParameter
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "select") {
		return "", customerrors.ErrNonSelectQuery
	}
	return text, nil
}

// Run validates and executes sql. Failures are reported inside the result, never as an error.
func (s *QueryService) Run(ctx context.Context, sql any) QueryResult {
	text, err := ValidateQuery(sql)
	if err != nil {
		return QueryResult{Error: err.Error()}
	}

	columns, rows, err := s.repo.RawQuery(ctx, text)
	if err != nil {
		return QueryResult{Error: customerrors.ErrQueryExecution{Cause: err}.Error()}
	}

	results := make([]Row, 0, len(rows))
	for _, values := range rows {
		results = append(results, buildRow(columns, values))
	}
	return QueryResult{Results: results}
}

// buildRow pairs columns with values. A repeated column name keeps its first
// position and takes the last value.
func buildRow(columns []string, values []any) Row {
	row := make(Row, 0, len(columns))
	for i, name := range columns {
		replaced := false
		for j := range row {
			if row[j].Name == name {
				row[j].Value = values[i]
				replaced = true
				break
			}
		}
		if !replaced {
			row = append(row, Column{Name: name, Value: values[i]})
		}
	}
	return row
}
