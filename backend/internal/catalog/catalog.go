// Package catalog holds the static sample graphs used to seed the store: the
// built-in commerce sample and synthetic graphs shaped after the MongoDB Atlas
// sample databases.
package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gpad1234/light-octo/backend/internal/graph"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// edgesPerRelationship caps how many sample edges a relationship produces
const edgesPerRelationship = 3

// Collection describes how one MongoDB collection maps onto graph nodes
type Collection struct {
	Name       string `json:"name"`
	NodeType   string `json:"node_type"`
	IDField    string `json:"id_field"`
	LabelField string `json:"label_field"`
	SampleSize int    `json:"sample_size"`
}

// Relationship links two collections of the same database
type Relationship struct {
	SourceCollection string `json:"source_collection"`
	TargetCollection string `json:"target_collection"`
	Relation         string `json:"relation"`
}

// Database is one named catalog entry
type Database struct {
	Name          string
	Collections   []Collection
	Relationships []Relationship
}

// DatabaseInfo summarizes a catalog entry for listing
type DatabaseInfo struct {
	Name              string         `json:"name"`
	Collections       []string       `json:"collections"`
	CollectionCount   int            `json:"collection_count"`
	RelationshipCount int            `json:"relationship_count"`
	Relationships     []Relationship `json:"relationships"`
	TotalSampleNodes  int            `json:"total_sample_nodes"`
	TotalSampleEdges  int            `json:"total_sample_edges"`
}

// SampleGraph is the node/edge set generated from a catalog entry
type SampleGraph struct {
	Database string
	Nodes    []graph.Node
	Edges    []graph.EdgeInput
}

var databases = []Database{
	{
		Name: "sample_mflix",
		Collections: []Collection{
			{Name: "movies", NodeType: "concept", IDField: "_id", LabelField: "title", SampleSize: 5},
			{Name: "users", NodeType: "person", IDField: "_id", LabelField: "name", SampleSize: 5},
		},
		Relationships: []Relationship{
			{SourceCollection: "users", TargetCollection: "movies", Relation: "watched"},
		},
	},
	{
		Name: "sample_airbnb",
		Collections: []Collection{
			{Name: "listingsAndReviews", NodeType: "concept", IDField: "_id", LabelField: "name", SampleSize: 5},
		},
	},
	{
		Name: "sample_analytics",
		Collections: []Collection{
			{Name: "customers", NodeType: "person", IDField: "_id", LabelField: "username", SampleSize: 5},
			{Name: "accounts", NodeType: "concept", IDField: "_id", LabelField: "account_title", SampleSize: 5},
		},
		Relationships: []Relationship{
			{SourceCollection: "customers", TargetCollection: "accounts", Relation: "owns"},
		},
	},
	{
		Name: "sample_restaurants",
		Collections: []Collection{
			{Name: "restaurants", NodeType: "concept", IDField: "_id", LabelField: "name", SampleSize: 10},
		},
	},
}

// Names returns the catalog entry names in a stable order
func Names() []string {
	names := make([]string, 0, len(databases))
	for _, db := range databases {
		names = append(names, db.Name)
	}
	return names
}

// Lookup returns the catalog entry with the given name
func Lookup(name string) (Database, error) {
	for _, db := range databases {
		if db.Name == name {
			return db, nil
		}
	}
	return Database{}, apperrors.NewNotFound(fmt.Sprintf("Database %s not found", name))
}

// Info summarizes a catalog entry
func Info(name string) (DatabaseInfo, error) {
	db, err := Lookup(name)
	if err != nil {
		return DatabaseInfo{}, err
	}

	info := DatabaseInfo{
		Name:              db.Name,
		Collections:       make([]string, 0, len(db.Collections)),
		CollectionCount:   len(db.Collections),
		RelationshipCount: len(db.Relationships),
		Relationships:     make([]Relationship, len(db.Relationships)),
		TotalSampleEdges:  len(db.Relationships) * edgesPerRelationship,
	}
	copy(info.Relationships, db.Relationships)
	for _, c := range db.Collections {
		info.Collections = append(info.Collections, c.Name)
		info.TotalSampleNodes += c.SampleSize
	}
	return info, nil
}

// All summarizes every catalog entry
func All() []DatabaseInfo {
	out := make([]DatabaseInfo, 0, len(databases))
	for _, name := range Names() {
		info, _ := Info(name)
		out = append(out, info)
	}
	return out
}

// Build generates the sample graph of a catalog entry. Node ids are
// "{collection}_{i}" and labels "{Collection} {i+1}".
func Build(name string) (*SampleGraph, error) {
	db, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	g := &SampleGraph{Database: db.Name}
	sizes := make(map[string]int, len(db.Collections))
	for _, c := range db.Collections {
		sizes[c.Name] = c.SampleSize
		for i := 0; i < c.SampleSize; i++ {
			g.Nodes = append(g.Nodes, graph.Node{
				ID:    nodeID(c.Name, i),
				Label: fmt.Sprintf("%s %d", titleCase(c.Name), i+1),
				Type:  c.NodeType,
			})
		}
	}

	for _, rel := range db.Relationships {
		n := min(edgesPerRelationship, sizes[rel.SourceCollection], sizes[rel.TargetCollection])
		for i := 0; i < n; i++ {
			g.Edges = append(g.Edges, graph.EdgeInput{
				Source:   nodeID(rel.SourceCollection, i),
				Target:   nodeID(rel.TargetCollection, i),
				Relation: rel.Relation,
			})
		}
	}

	return g, nil
}

func nodeID(collection string, i int) string {
	return fmt.Sprintf("%s_%d", collection, i)
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "listingsAndReviews" becomes "Listingsandreviews".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
