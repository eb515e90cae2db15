package schema

import (
	"fmt"
	"strings"

	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// SQLSchema is the SQL DDL rendering of a graph
type SQLSchema struct {
	SchemaType        string `json:"schema_type"`
	Database          string `json:"database"`
	Schema            string `json:"schema"`
	TableCount        int    `json:"table_count"`
	RelationshipCount int    `json:"relationship_count"`
}

// SQLOptions tweaks the generated DDL
type SQLOptions struct {
	// LegacyNodeIDReferences points junction foreign keys at tables named after
	// the endpoint node ids instead of the endpoint type tables.
	LegacyNodeIDReferences bool
}

const nodeTableTemplate = `-- Table for %s entities
CREATE TABLE %s (
    id VARCHAR(255) PRIMARY KEY,
    label VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const junctionTableTemplate = `-- Relationship table for %s
CREATE TABLE %s (
    id INT AUTO_INCREMENT PRIMARY KEY,
    source_id VARCHAR(255) NOT NULL,
    target_id VARCHAR(255) NOT NULL,
    relation VARCHAR(255) NOT NULL DEFAULT '%s',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (source_id) REFERENCES %s(id),
    FOREIGN KEY (target_id) REFERENCES %s(id),
    UNIQUE KEY unique_relation (source_id, target_id, relation)
);
`

// GenerateSQL renders one table per distinct node type and one junction
// table per edge.
func GenerateSQL(snap graph.Snapshot) (*SQLSchema, error) {
	return GenerateSQLWithOptions(snap, SQLOptions{})
}

// GenerateSQLWithOptions is GenerateSQL with explicit options
func GenerateSQLWithOptions(snap graph.Snapshot, opts SQLOptions) (*SQLSchema, error) {
	types := distinctTypes(snap.Nodes)
	statements := make([]string, 0, len(types)+len(snap.Edges))

	for _, t := range types {
		table, err := identifier(tableName(t))
		if err != nil {
			return nil, apperrors.NewGenerationFailed("SQL schema", err)
		}
		statements = append(statements, fmt.Sprintf(nodeTableTemplate, sqlComment(t), table))
	}

	typeOf := make(map[string]string, len(snap.Nodes))
	for _, n := range snap.Nodes {
		typeOf[n.ID] = n.Type
	}

	for _, e := range snap.Edges {
		src, err := identifier(e.Source)
		if err != nil {
			return nil, apperrors.NewGenerationFailed("SQL schema", err)
		}
		dst, err := identifier(e.Target)
		if err != nil {
			return nil, apperrors.NewGenerationFailed("SQL schema", err)
		}

		srcRef, dstRef := src, dst
		if !opts.LegacyNodeIDReferences {
			srcType, ok1 := typeOf[e.Source]
			dstType, ok2 := typeOf[e.Target]
			if !ok1 || !ok2 {
				return nil, apperrors.NewGenerationFailed("SQL schema",
					fmt.Errorf("edge %s references a node outside the snapshot", e.ID))
			}
			// Already validated as table names above
			srcRef, _ = identifier(tableName(srcType))
			dstRef, _ = identifier(tableName(dstType))
		}

		statements = append(statements, fmt.Sprintf(junctionTableTemplate,
			sqlComment(e.Relation),
			src+"_to_"+dst,
			sqlString(e.Relation),
			srcRef,
			dstRef,
		))
	}

	return &SQLSchema{
		SchemaType:        "SQL",
		Database:          "MySQL/PostgreSQL",
		Schema:            strings.Join(statements, "\n"),
		TableCount:        len(types),
		RelationshipCount: len(snap.Edges),
	}, nil
}

// sqlString escapes a value for use inside a single-quoted SQL literal
func sqlString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

var commentReplacer = strings.NewReplacer("\r", " ", "\n", " ")

// sqlComment keeps a value on a single "--" comment line
func sqlComment(s string) string {
	return commentReplacer.Replace(s)
}
