// Package schema renders the current graph as database schema text: SQL DDL,
// MongoDB collection validators and Cypher statements.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gpad1234/light-octo/backend/internal/graph"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// identifierReplacer maps separators that commonly appear in node ids and
// types onto underscores before validation.
var identifierReplacer = strings.NewReplacer("-", "_", " ", "_", ".", "_")

// identifier turns s into a bare SQL/Cypher identifier or reports why it can't
func identifier(s string) (string, error) {
	id := identifierReplacer.Replace(s)
	if !identifierPattern.MatchString(id) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	return id, nil
}

// distinctTypes returns node types in first-seen order. Types that differ
// only in case collapse onto the first spelling seen.
func distinctTypes(nodes []graph.Node) []string {
	seen := make(map[string]struct{}, len(nodes))
	var out []string
	for _, n := range nodes {
		key := strings.ToLower(n.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n.Type)
	}
	return out
}

// distinctRelations returns edge relation labels in first-seen order
func distinctRelations(edges []graph.Edge) []string {
	seen := make(map[string]struct{}, len(edges))
	out := []string{}
	for _, e := range edges {
		if _, ok := seen[e.Relation]; ok {
			continue
		}
		seen[e.Relation] = struct{}{}
		out = append(out, e.Relation)
	}
	return out
}

// tableName pluralizes a node type the naive way: lower-case plus "s"
func tableName(nodeType string) string {
	return strings.ToLower(nodeType) + "s"
}
