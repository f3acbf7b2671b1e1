package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Neo4jClient implements Client for Neo4j graph databases.
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config Config) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jClient{config: config}, nil
}

// Connect establishes a connection to the Neo4j database and verifies
// connectivity.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		cfg.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
	})
	if err != nil {
		return types.WrapError(types.GRAPH_CONNECTION_FAILED, "failed to create driver", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return types.WrapError(types.GRAPH_CONNECTION_FAILED, "connectivity check failed", err)
	}

	c.driver = driver
	return nil
}

// Close releases all resources and closes the database connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(types.GRAPH_CONNECTION_CLOSED, "failed to close driver", err)
	}

	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}

	return types.Healthy("connected to Neo4j")
}

// Query executes a Cypher query in a read transaction. The session is
// request-scoped and closed on every exit path.
func (c *Neo4jClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(types.GRAPH_CONNECTION_CLOSED, "driver not connected")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}

		return convertRecords(records), nil
	})

	if err != nil {
		return QueryResult{}, types.WrapError(types.GRAPH_QUERY_FAILED, "query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// convertRecords converts Neo4j records to the QueryResult format.
// Entity values (nodes, relationships, paths) are passed through as dbtype
// values for downstream canonicalization.
func convertRecords(records []*neo4j.Record) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	return result
}
