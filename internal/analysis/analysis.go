// Package analysis extracts summary facts from textual parse trees: the
// relations a statement touches and the statement class. It consumes only
// the facade's public tree output and never talks to the native layer, so
// it works on any tree regardless of which grammar version produced it.
package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tables returns the relation names referenced anywhere in the tree, in
// first-appearance order, deduplicated. Schema-qualified relations are
// reported as schema.name.
func Tables(tree string) ([]string, error) {
	root, err := decode(tree)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	walk(root, func(node map[string]any) {
		rel, ok := node["relname"].(string)
		if !ok || rel == "" {
			return
		}
		if schema, ok := node["schemaname"].(string); ok && schema != "" {
			rel = schema + "." + rel
		}
		if !seen[rel] {
			seen[rel] = true
			out = append(out, rel)
		}
	})
	return out, nil
}

// stmtNames maps tree node keys to statement classes where trimming the
// _stmt suffix alone reads poorly.
var stmtNames = map[string]string{
	"select_stmt":          "SELECT",
	"insert_stmt":          "INSERT",
	"update_stmt":          "UPDATE",
	"delete_stmt":          "DELETE",
	"merge_stmt":           "MERGE",
	"create_stmt":          "CREATE TABLE",
	"index_stmt":           "CREATE INDEX",
	"view_stmt":            "CREATE VIEW",
	"drop_stmt":            "DROP",
	"truncate_stmt":        "TRUNCATE",
	"transaction_stmt":     "TRANSACTION",
	"variable_set_stmt":    "SET",
	"explain_stmt":         "EXPLAIN",
	"copy_stmt":            "COPY",
	"alter_table_stmt":     "ALTER TABLE",
	"create_function_stmt": "CREATE FUNCTION",
}

// StatementTypes classifies each top-level statement in the tree, in order.
func StatementTypes(tree string) ([]string, error) {
	root, err := decode(tree)
	if err != nil {
		return nil, err
	}
	stmts, _ := root["stmts"].([]any)
	out := make([]string, 0, len(stmts))
	for _, raw := range stmts {
		wrapper, _ := raw.(map[string]any)
		node, _ := wrapper["stmt"].(map[string]any)
		out = append(out, classify(node))
	}
	return out, nil
}

func classify(node map[string]any) string {
	for key := range node {
		if name, ok := stmtNames[key]; ok {
			return name
		}
		// Fall back to the node kind itself: "vacuum_stmt" -> "VACUUM".
		if strings.HasSuffix(key, "_stmt") {
			return strings.ToUpper(strings.ReplaceAll(strings.TrimSuffix(key, "_stmt"), "_", " "))
		}
	}
	return "UNKNOWN"
}

func decode(tree string) (map[string]any, error) {
	var root map[string]any
	if err := json.Unmarshal([]byte(tree), &root); err != nil {
		return nil, fmt.Errorf("analysis: malformed tree: %w", err)
	}
	return root, nil
}

// walk visits every JSON object in the tree depth-first, preserving child
// order within arrays.
func walk(v any, visit func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(t)
		// Deterministic order: map iteration would randomize which sibling
		// relation is seen first.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(t[k], visit)
		}
	case []any:
		for _, child := range t {
			walk(child, visit)
		}
	}
}
