// Package neorecipe implements a recipe catalog on top of Neo4j: ingredients,
// recipes and the USES relation between them, plus ranking of recipes by how
// well a set of available ingredients covers them.
package neorecipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

//---

// Neo4jExecutor is a concrete implementation of the DBRunner interface that uses the
// official Neo4j Go driver. It owns the driver instance; create one at startup,
// share it across operations and Close it at shutdown.
type Neo4jExecutor struct {
	Driver       neo4j.DriverWithContext
	DBName       string
	QueryTimeout time.Duration

	logger *slog.Logger
}

// ExecutorOption configures a Neo4jExecutor.
type ExecutorOption func(*Neo4jExecutor)

// WithQueryTimeout bounds every query. Zero leaves the caller's context as is.
func WithQueryTimeout(d time.Duration) ExecutorOption {
	return func(e *Neo4jExecutor) {
		e.QueryTimeout = d
	}
}

// WithExecutorLogger sets the logger used for query tracing.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Neo4jExecutor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It establishes a connection driver with the provided credentials.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string, opts ...ExecutorOption) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	e := &Neo4jExecutor{Driver: driver, DBName: dbName, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Verify checks the connectivity to the Neo4j database.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver and its connection pool.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a Cypher query using ExecuteQuery, which handles session and
// transaction management automatically. It is suitable for both read and write
// operations.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	An EagerResult containing all buffered records from the query, or an error if
//	the execution fails.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	if e.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	observeQuery(time.Since(start), err)

	if err != nil {
		e.logger.Debug("query failed", "error", err, "duration", time.Since(start).String())
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	e.logger.Debug("query executed",
		"rows", len(result.Records),
		"duration", time.Since(start).String())
	return result, nil
}
