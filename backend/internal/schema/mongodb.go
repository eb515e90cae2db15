package schema

import (
	"strings"

	"github.com/gpad1234/light-octo/backend/internal/graph"
)

// MongoDatabaseName is the database the generated collections belong to
const MongoDatabaseName = "knowledge_graph"

// MongoSchema is the MongoDB rendering of a graph
type MongoSchema struct {
	SchemaType        string        `json:"schema_type"`
	Schema            MongoDocument `json:"schema"`
	CollectionCount   int           `json:"collection_count"`
	RelationshipCount int           `json:"relationship_count"`
}

// MongoDocument describes the database: one validated collection per node type
type MongoDocument struct {
	Database          string                     `json:"database"`
	Collections       map[string]MongoCollection `json:"collections"`
	RelationshipTypes []string                   `json:"relationshipTypes"`
	IndexSuggestions  IndexSuggestions           `json:"indexSuggestions"`
}

// MongoCollection is a collection name plus its $jsonSchema validator
type MongoCollection struct {
	CollectionName string    `json:"collectionName"`
	Validator      Validator `json:"validator"`
}

// Validator wraps a $jsonSchema document
type Validator struct {
	JSONSchema JSONSchema `json:"$jsonSchema"`
}

// JSONSchema is the subset of MongoDB's $jsonSchema the generator emits
type JSONSchema struct {
	BSONType    string                `json:"bsonType"`
	Description string                `json:"description,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Enum        []string              `json:"enum,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
}

// IndexSuggestions lists recommended indexes per use case
type IndexSuggestions struct {
	Common    []IndexKey `json:"common"`
	ForSearch []IndexKey `json:"forSearch"`
}

// IndexKey is one index definition. Values are 1, -1 or "text".
type IndexKey struct {
	Key map[string]interface{} `json:"key"`
}

// GenerateMongo renders one collection validator per distinct lower-cased
// node type and the set of relation labels in use.
func GenerateMongo(snap graph.Snapshot) (*MongoSchema, error) {
	collections := make(map[string]MongoCollection)
	for _, t := range distinctTypes(snap.Nodes) {
		lower := strings.ToLower(t)
		collections[lower] = MongoCollection{
			CollectionName: tableName(lower),
			Validator:      Validator{JSONSchema: nodeValidator(lower)},
		}
	}

	relations := distinctRelations(snap.Edges)

	return &MongoSchema{
		SchemaType: "MongoDB",
		Schema: MongoDocument{
			Database:          MongoDatabaseName,
			Collections:       collections,
			RelationshipTypes: relations,
			IndexSuggestions:  defaultIndexSuggestions(),
		},
		CollectionCount:   len(collections),
		RelationshipCount: len(relations),
	}, nil
}

func nodeValidator(nodeType string) JSONSchema {
	return JSONSchema{
		BSONType: "object",
		Required: []string{"_id", "label", "type"},
		Properties: map[string]JSONSchema{
			"_id":   {BSONType: "string", Description: "Unique identifier"},
			"label": {BSONType: "string", Description: "Display name"},
			"type":  {BSONType: "string", Enum: []string{nodeType}, Description: "Entity type"},
			"relationships": {
				BSONType:    "array",
				Description: "Array of related entities",
				Items: &JSONSchema{
					BSONType: "object",
					Properties: map[string]JSONSchema{
						"targetId": {BSONType: "string"},
						"relation": {BSONType: "string"},
						"metadata": {BSONType: "object"},
					},
				},
			},
			"metadata":  {BSONType: "object", Description: "Additional properties"},
			"createdAt": {BSONType: "date"},
			"updatedAt": {BSONType: "date"},
		},
	}
}

func defaultIndexSuggestions() IndexSuggestions {
	return IndexSuggestions{
		Common: []IndexKey{
			{Key: map[string]interface{}{"label": 1}},
			{Key: map[string]interface{}{"type": 1}},
			{Key: map[string]interface{}{"createdAt": -1}},
		},
		ForSearch: []IndexKey{
			{Key: map[string]interface{}{"label": "text"}},
			{Key: map[string]interface{}{"relationships.relation": 1}},
		},
	}
}
