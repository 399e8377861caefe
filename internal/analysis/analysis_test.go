package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const joinTree = `{"version": 170004, "stmts": [{"stmt": {"select_stmt": {
	"from_clause": [{"join_expr": {
		"larg": {"range_var": {"relname": "users"}},
		"rarg": {"range_var": {"schemaname": "audit", "relname": "events"}}
	}}],
	"where_clause": {"sub_link": {"subselect": {"select_stmt": {
		"from_clause": [{"range_var": {"relname": "users"}}]
	}}}}
}}}]}`

func TestTables(t *testing.T) {
	tables, err := Tables(joinTree)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "audit.events"}, tables)
}

func TestTables_NoRelations(t *testing.T) {
	tables, err := Tables(`{"stmts": [{"stmt": {"select_stmt": {}}}]}`)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestTables_Malformed(t *testing.T) {
	_, err := Tables(`{"stmts": [`)
	require.Error(t, err)
}

func TestStatementTypes(t *testing.T) {
	tree := `{"stmts": [
		{"stmt": {"select_stmt": {}}},
		{"stmt": {"insert_stmt": {"relation": {"relname": "t"}}}},
		{"stmt": {"vacuum_stmt": {}}},
		{"stmt": {"index_stmt": {}}},
		{"stmt": {"something_else": {}}}
	]}`
	types, err := StatementTypes(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT", "INSERT", "VACUUM", "CREATE INDEX", "UNKNOWN"}, types)
}
