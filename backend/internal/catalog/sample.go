package catalog

import "github.com/gpad1234/light-octo/backend/internal/graph"

// BuiltinSample returns the commerce domain graph loaded at startup and by
// the sample-data endpoint.
func BuiltinSample() ([]graph.Node, []graph.EdgeInput) {
	nodes := []graph.Node{
		{ID: "user", Label: "User", Type: "entity", X: 100, Y: 100},
		{ID: "order", Label: "Order", Type: "entity", X: 300, Y: 100},
		{ID: "product", Label: "Product", Type: "entity", X: 500, Y: 100},
		{ID: "payment", Label: "Payment", Type: "entity", X: 300, Y: 300},
		{ID: "inventory", Label: "Inventory", Type: "entity", X: 500, Y: 300},
	}
	edges := []graph.EdgeInput{
		{Source: "user", Target: "order", Relation: "places"},
		{Source: "order", Target: "product", Relation: "contains"},
		{Source: "order", Target: "payment", Relation: "has_payment"},
		{Source: "product", Target: "inventory", Relation: "tracked_in"},
	}
	return nodes, edges
}
