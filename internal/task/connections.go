package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// connectionResultCap bounds each connection query so an unconstrained label
// pair cannot pull the whole graph into memory.
const connectionResultCap = 25

// ConnectionFinder discovers how two schema label types relate: direct
// relationships first, then shared-intermediate connections via a symmetric
// two-hop pattern. It is the one task that issues two distinct reads per
// invocation.
type ConnectionFinder struct {
	graph   graph.Client
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewConnectionFinder(deps Deps) *ConnectionFinder {
	return &ConnectionFinder{
		graph:   deps.Graph,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

func (f *ConnectionFinder) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	fromType, err := stringParam(params, "from_type")
	if err != nil {
		return failure(err.Error())
	}
	toType, err := stringParam(params, "to_type")
	if err != nil {
		return failure(err.Error())
	}
	if !f.catalog.HasLabel(fromType) {
		return failuref("from_type %q is not a schema label", fromType)
	}
	if !f.catalog.HasLabel(toType) {
		return failuref("to_type %q is not a schema label", toType)
	}

	direct, err := f.graph.Query(ctx,
		fmt.Sprintf(`MATCH (a:%s)-[r]-(b:%s) RETURN a, r, b LIMIT $cap`, fromType, toType),
		map[string]any{"cap": connectionResultCap})
	if err != nil {
		return failuref("direct connection query failed: %v", err)
	}

	shared, err := f.graph.Query(ctx,
		fmt.Sprintf(`MATCH (a:%s)-[r1]-(x)-[r2]-(b:%s)
		 WHERE a <> b AND NOT x:%s AND NOT x:%s
		 RETURN a, r1, x, r2, b LIMIT $cap`, fromType, toType, fromType, toType),
		map[string]any{"cap": connectionResultCap})
	if err != nil {
		return failuref("shared connection query failed: %v", err)
	}

	data := graphdata.FromRecords(direct.Records).Merge(graphdata.FromRecords(shared.Records))

	strategy := connectionStrategy(len(direct.Records), len(shared.Records))
	f.logger.Debug("connection discovery complete",
		"from", fromType,
		"to", toType,
		"strategy", strategy,
		"nodes", data.NodeCount(),
		"edges", data.EdgeCount())

	return success(map[string]any{
		"type":               "graph",
		"graphData":          data,
		"connectionStrategy": strategy,
		"directCount":        len(direct.Records),
		"sharedCount":        len(shared.Records),
	})
}

func connectionStrategy(directCount, sharedCount int) string {
	switch {
	case directCount > 0 && sharedCount > 0:
		return "direct_and_shared"
	case directCount > 0:
		return "direct"
	case sharedCount > 0:
		return "shared_intermediate"
	default:
		return "none"
	}
}
