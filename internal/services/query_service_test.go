package services

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/visitorpulse/internal/models"
	"github.com/axellelanca/visitorpulse/internal/repository"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		sql     any
		wantErr string
	}{
		{name: "Select", sql: "SELECT 1"},
		{name: "Lowercase With Whitespace", sql: "  \n\tselect * from visitors"},
		{name: "Mixed Case", sql: "SeLeCt 1"},
		{name: "Drop", sql: "DROP TABLE visitors", wantErr: "Only SELECT queries are allowed"},
		{name: "Empty", sql: "", wantErr: "Only SELECT queries are allowed"},
		{name: "Number", sql: 123, wantErr: "Invalid SQL parameter"},
		{name: "Float", sql: 1.5, wantErr: "Invalid SQL parameter"},
		{name: "Missing", sql: nil, wantErr: "Invalid SQL parameter"},
		{name: "List", sql: []any{"select 1"}, wantErr: "Invalid SQL parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateQuery(tt.sql)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func runQuery(t *testing.T, svc *QueryService, sql any) string {
	t.Helper()
	out, err := json.Marshal(svc.Run(context.Background(), sql))
	require.NoError(t, err)
	return string(out)
}

func TestQueryServiceRun(t *testing.T) {
	db := newTestDB(t)
	svc := NewQueryService(repository.NewQueryRepository(db))

	t.Run("Select Literal", func(t *testing.T) {
		assert.JSONEq(t, `{"results":[{"x":1}]}`, runQuery(t, svc, "SELECT 1 as x"))
	})

	t.Run("Column Order Preserved", func(t *testing.T) {
		out := runQuery(t, svc, "select 3 as c, 'two' as a, 1 as b")
		assert.Equal(t, `{"results":[{"c":3,"a":"two","b":1}]}`, out)
	})

	t.Run("Empty Result", func(t *testing.T) {
		assert.JSONEq(t, `{"results":[]}`, runQuery(t, svc, "select * from visitors"))
	})

	t.Run("Drop Rejected", func(t *testing.T) {
		assert.JSONEq(t, `{"error":"Only SELECT queries are allowed"}`, runQuery(t, svc, "DROP TABLE visitors"))
		assert.True(t, db.Migrator().HasTable(&models.Visitor{}), "rejected statements must not run")
	})

	t.Run("Non String Rejected", func(t *testing.T) {
		assert.JSONEq(t, `{"error":"Invalid SQL parameter"}`, runQuery(t, svc, 123))
	})

	t.Run("Execution Failure", func(t *testing.T) {
		result := svc.Run(context.Background(), "select * from no_such_table")
		assert.Nil(t, result.Results)
		assert.True(t, strings.HasPrefix(result.Error, "Query execution failed: "), result.Error)
		assert.Contains(t, result.Error, "no_such_table")
	})
}

func TestQueryServiceRowOrder(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService()
	visitors := repository.NewVisitorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	for _, cookie := range []string{"a", "b", "c"} {
		v := seedVisitor(t, visitors, cookie)
		_, err := sessions.Reconcile(sessionRepo, v)
		require.NoError(t, err)
	}

	svc := NewQueryService(repository.NewQueryRepository(db))
	result := svc.Run(context.Background(), "SELECT cookie_id, id FROM visitors ORDER BY cookie_id DESC")
	require.Empty(t, result.Error)
	require.Len(t, result.Results, 3)

	var cookies []string
	for _, row := range result.Results {
		require.Equal(t, "cookie_id", row[0].Name)
		require.Equal(t, "id", row[1].Name)
		cookie, ok := row[0].Value.(string)
		require.True(t, ok)
		cookies = append(cookies, cookie)
	}
	assert.Equal(t, []string{"c", "b", "a"}, cookies)
}

func TestBuildRowDuplicateColumns(t *testing.T) {
	row := buildRow([]string{"x", "y", "x"}, []any{1, 2, 3})
	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"x":3,"y":2}`, string(out))
}
