// Package export writes graph snapshots to external graph databases.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/gpad1234/light-octo/backend/internal/graph"
	"github.com/gpad1234/light-octo/backend/internal/schema"
	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
)

const serviceName = "neo4j"

// Batch is one parameterized write: Query runs once with $rows bound to Rows
type Batch struct {
	Query string
	Rows  []map[string]interface{}
}

// Plan is the full set of statements an export executes, in order
type Plan struct {
	Constraints   []string
	NodeBatches   []Batch
	EdgeBatches   []Batch
	Nodes         int
	Relationships int
}

// Result reports what an export wrote
type Result struct {
	Constraints   int           `json:"constraints"`
	Nodes         int           `json:"nodes"`
	Relationships int           `json:"relationships"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
}

// Runner executes a plan against a database
type Runner interface {
	EnsureConstraints(ctx context.Context, statements []string) error
	WriteBatches(ctx context.Context, batches []Batch) error
}

// Exporter pushes snapshots to Neo4j through a Runner
type Exporter struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

// NewExporter creates an exporter. A zero timeout means 60 seconds.
func NewExporter(runner Runner, timeout time.Duration) *Exporter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Exporter{runner: runner, timeout: timeout, logger: logger.Get()}
}

// Export writes snap idempotently: nodes are merged on (label, id) and
// relationships on (source, type, target).
func (e *Exporter) Export(ctx context.Context, snap graph.Snapshot) (*Result, error) {
	plan, err := BuildPlan(snap)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	start := time.Now()

	if err := e.runner.EnsureConstraints(ctx, plan.Constraints); err != nil {
		return nil, e.upstreamError(ctx, "failed to create constraints", err)
	}
	batches := make([]Batch, 0, len(plan.NodeBatches)+len(plan.EdgeBatches))
	batches = append(batches, plan.NodeBatches...)
	batches = append(batches, plan.EdgeBatches...)
	if err := e.runner.WriteBatches(ctx, batches); err != nil {
		return nil, e.upstreamError(ctx, "failed to write graph", err)
	}

	elapsed := time.Since(start)
	e.logger.Info("Graph exported to Neo4j",
		zap.Int("nodes", plan.Nodes),
		zap.Int("relationships", plan.Relationships),
		zap.Duration("duration", elapsed),
	)
	return &Result{
		Constraints:   len(plan.Constraints),
		Nodes:         plan.Nodes,
		Relationships: plan.Relationships,
		Duration:      elapsed,
		DurationMS:    elapsed.Milliseconds(),
	}, nil
}

func (e *Exporter) upstreamError(ctx context.Context, msg string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return apperrors.NewUpstreamTimeout(serviceName, e.timeout, err)
	}
	return apperrors.NewUpstreamFailed(serviceName, msg, err)
}

// BuildPlan groups nodes by label and edges by (source label, type, target
// label) so every batch can use a fixed, validated query text.
func BuildPlan(snap graph.Snapshot) (*Plan, error) {
	cypher, err := schema.GenerateCypher(snap)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Constraints:   cypher.Constraints,
		Nodes:         len(snap.Nodes),
		Relationships: len(snap.Edges),
	}

	labelOf := make(map[string]string, len(snap.Nodes))
	nodeRows := make(map[string][]map[string]interface{})
	for _, n := range snap.Nodes {
		// Labels were validated by GenerateCypher
		label, _ := schema.NodeLabel(n.Type)
		labelOf[n.ID] = label
		nodeRows[label] = append(nodeRows[label], map[string]interface{}{
			"id":    n.ID,
			"label": n.Label,
			"type":  n.Type,
			"x":     n.X,
			"y":     n.Y,
		})
	}
	for _, label := range sortedKeys(nodeRows) {
		plan.NodeBatches = append(plan.NodeBatches, Batch{
			Query: fmt.Sprintf(`UNWIND $rows AS row
MERGE (n:%s {id: row.id})
SET n.label = row.label, n.type = row.type, n.x = row.x, n.y = row.y`, label),
			Rows: nodeRows[label],
		})
	}

	edgeRows := make(map[string][]map[string]interface{})
	edgeQuery := make(map[string]string)
	for _, edge := range snap.Edges {
		relType, _ := schema.RelationshipType(edge.Relation)
		src, dst := labelOf[edge.Source], labelOf[edge.Target]
		key := src + "|" + relType + "|" + dst
		if _, ok := edgeQuery[key]; !ok {
			edgeQuery[key] = fmt.Sprintf(`UNWIND $rows AS row
MATCH (a:%s {id: row.source})
MATCH (b:%s {id: row.target})
MERGE (a)-[r:%s]->(b)
SET r.id = row.id, r.relation = row.relation`, src, dst, relType)
		}
		edgeRows[key] = append(edgeRows[key], map[string]interface{}{
			"id":       edge.ID,
			"source":   edge.Source,
			"target":   edge.Target,
			"relation": edge.Relation,
		})
	}
	for _, key := range sortedKeys(edgeRows) {
		plan.EdgeBatches = append(plan.EdgeBatches, Batch{Query: edgeQuery[key], Rows: edgeRows[key]})
	}

	return plan, nil
}

func sortedKeys(m map[string][]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// Neo4j runner
// ============================================================================

// DriverRunner runs plans through the official Neo4j driver
type DriverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect creates a driver for uri and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}
	return driver, nil
}

// NewDriverRunner wraps driver. An empty database uses the server default.
func NewDriverRunner(driver neo4j.DriverWithContext, database string) *DriverRunner {
	return &DriverRunner{driver: driver, database: database}
}

// Close closes the Neo4j driver connection
func (r *DriverRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// EnsureConstraints runs each schema statement in its own auto-commit
// transaction; Neo4j does not allow schema and data writes to mix.
func (r *DriverRunner) EnsureConstraints(ctx context.Context, statements []string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
	defer session.Close(ctx)

	for _, stmt := range statements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("failed to consume %q: %w", stmt, err)
		}
	}
	return nil
}

// WriteBatches runs every batch in a single write transaction
func (r *DriverRunner) WriteBatches(ctx context.Context, batches []Batch) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, b := range batches {
			rows := make([]interface{}, len(b.Rows))
			for i, row := range b.Rows {
				rows[i] = row
			}
			result, err := tx.Run(ctx, b.Query, map[string]interface{}{"rows": rows})
			if err != nil {
				return nil, fmt.Errorf("failed to execute batch: %w", err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("failed to consume batch: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
