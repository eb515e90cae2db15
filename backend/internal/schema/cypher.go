package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// CypherSchema is the Neo4j rendering of a graph
type CypherSchema struct {
	SchemaType        string   `json:"schema_type"`
	Database          string   `json:"database"`
	Constraints       []string `json:"constraints"`
	Statements        []string `json:"statements"`
	Schema            string   `json:"schema"`
	LabelCount        int      `json:"label_count"`
	RelationshipCount int      `json:"relationship_count"`
}

// NodeLabel maps a node type onto a Neo4j label: "entity" becomes "Entity"
func NodeLabel(nodeType string) (string, error) {
	id, err := identifier(strings.ToLower(nodeType))
	if err != nil {
		return "", err
	}
	r, size := utf8.DecodeRuneInString(id)
	return string(unicode.ToUpper(r)) + id[size:], nil
}

// RelationshipType maps a relation label onto a Neo4j relationship type:
// "has_payment" becomes "HAS_PAYMENT"
func RelationshipType(relation string) (string, error) {
	id, err := identifier(relation)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(id), nil
}

// GenerateCypher renders a uniqueness constraint per node label followed by
// idempotent MERGE statements for every node and edge.
func GenerateCypher(snap graph.Snapshot) (*CypherSchema, error) {
	out := &CypherSchema{
		SchemaType:  "Cypher",
		Database:    "Neo4j",
		Constraints: []string{},
		Statements:  []string{},
	}

	labelOf := make(map[string]string, len(snap.Nodes))
	for _, t := range distinctTypes(snap.Nodes) {
		label, err := NodeLabel(t)
		if err != nil {
			return nil, apperrors.NewGenerationFailed("Cypher schema", err)
		}
		out.Constraints = append(out.Constraints, fmt.Sprintf(
			"CREATE CONSTRAINT %s_id IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE;",
			strings.ToLower(label), label))
	}
	out.LabelCount = len(out.Constraints)

	for _, n := range snap.Nodes {
		label, err := NodeLabel(n.Type)
		if err != nil {
			return nil, apperrors.NewGenerationFailed("Cypher schema", err)
		}
		labelOf[n.ID] = label
		out.Statements = append(out.Statements, fmt.Sprintf(
			"MERGE (n:%s {id: %s}) SET n.label = %s, n.type = %s, n.x = %s, n.y = %s;",
			label, cypherString(n.ID), cypherString(n.Label), cypherString(n.Type),
			cypherNumber(n.X), cypherNumber(n.Y)))
	}

	for _, e := range snap.Edges {
		relType, err := RelationshipType(e.Relation)
		if err != nil {
			return nil, apperrors.NewGenerationFailed("Cypher schema", err)
		}
		srcLabel, ok1 := labelOf[e.Source]
		dstLabel, ok2 := labelOf[e.Target]
		if !ok1 || !ok2 {
			return nil, apperrors.NewGenerationFailed("Cypher schema",
				fmt.Errorf("edge %s references a node outside the snapshot", e.ID))
		}
		out.Statements = append(out.Statements, fmt.Sprintf(
			"MATCH (a:%s {id: %s}), (b:%s {id: %s}) MERGE (a)-[:%s]->(b);",
			srcLabel, cypherString(e.Source), dstLabel, cypherString(e.Target), relType))
	}
	out.RelationshipCount = len(snap.Edges)

	all := make([]string, 0, len(out.Constraints)+len(out.Statements))
	all = append(all, out.Constraints...)
	all = append(all, out.Statements...)
	out.Schema = strings.Join(all, "\n")
	return out, nil
}

var cypherEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func cypherString(s string) string {
	return "'" + cypherEscaper.Replace(s) + "'"
}

func cypherNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
