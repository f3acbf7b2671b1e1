// Package graph provides the engine's interface to the property graph
// database. The Neo4j implementation opens one session per operation and
// releases it on every exit path; clients are safe for concurrent use.
package graph

import (
	"context"
	"time"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Client provides an interface for graph database operations.
// Implementations must be thread-safe for concurrent access.
type Client interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the connection.
	Health(ctx context.Context) types.HealthStatus

	// Query executes a Cypher query with the given parameters.
	// Each call acquires a request-scoped session and releases it before
	// returning, success or failure.
	Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	// Values may be scalars, dbtype.Node, dbtype.Relationship, or
	// dbtype.Path depending on the query's projection.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime time.Duration
}

// Config contains configuration options for graph database clients.
type Config struct {
	// URI is the connection URI, e.g. "bolt://host:7687" or
	// "neo4j+s://host" for routing with TLS.
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name to connect to. Empty string uses the default database.
	Database string

	// MaxConnectionPoolSize limits the number of pooled connections.
	MaxConnectionPoolSize int

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		Password:              "password",
		MaxConnectionPoolSize: 50,
		ConnectionTimeout:     30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(types.GRAPH_INVALID_CONFIG, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(types.GRAPH_INVALID_CONFIG, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(types.GRAPH_INVALID_CONFIG, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(types.GRAPH_INVALID_CONFIG, "ConnectionTimeout must be positive")
	}
	return nil
}
