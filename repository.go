package neorecipe

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Repository provides node-level CRUD for an entity type T. It relies on
// `crud` struct tags to map struct fields to node properties; the node label
// is the struct name.
type Repository[T any] struct {
	runner DBRunner
	meta   *entityMetadata
}

// NewRepository creates a new generic repository for the type T.
//
// Parameters:
//   - runner: An instance of DBRunner, used to execute all Cypher queries.
//
// Returns:
//
//	A new Repository instance or an error if the struct tags are invalid.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	meta, err := parseTags[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		runner: runner,
		meta:   meta,
	}, nil
}

// Label returns the node label managed by the repository.
func (r *Repository[T]) Label() string {
	return r.meta.Label
}

// Create inserts a new node carrying the entity's tagged properties and
// returns a new value stamped with the assigned identity.
func (r *Repository[T]) Create(ctx context.Context, op string, entity *T) (*T, error) {
	qb := gocypher.NewQueryBuilder().
		Create(gocypher.N("n", r.meta.Label).WithProperties(encodeEntity(r.meta, entity))).
		Return("n")
	return r.writeOne(ctx, op, qb, ErrCodeNotCreated)
}

// Merge finds a node with exactly the entity's tagged properties or creates
// it, so repeated calls with the same entity yield the same node.
func (r *Repository[T]) Merge(ctx context.Context, op string, entity *T) (*T, error) {
	qb := gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", r.meta.Label).WithProperties(encodeEntity(r.meta, entity))).
		Return("n")
	return r.writeOne(ctx, op, qb, ErrCodeNotCreated)
}

func (r *Repository[T]) writeOne(ctx context.Context, op string, qb *gocypher.QueryBuilder, emptyCode ErrorCode) (*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: could not build query: %w", op, err)
	}
	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(result.Records) == 0 {
		return nil, newError(emptyCode, op, "%s write returned no rows", r.meta.Label)
	}
	return r.decodeRecord(op, result.Records[0], "n")
}

// FindByID retrieves a single node by its store identity.
//
// Returns:
//
//	The decoded entity, an InvalidID error when id does not parse, a NotFound
//	error when no node matches, or an UpstreamQuery error.
func (r *Repository[T]) FindByID(ctx context.Context, op, id string) (*T, error) {
	nodeID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}

	result, err := r.runner.Run(ctx, fmt.Sprintf(FindNodeByID, r.meta.Label), map[string]any{"id": nodeID})
	if err != nil {
		return nil, upstream(op, err)
	}

	if len(result.Records) == 0 {
		return nil, newError(ErrCodeNotFound, op, "%s %s not found", r.meta.Label, id)
	}
	if len(result.Records) > 1 {
		// An identity lookup can only match once.
		return nil, newError(ErrCodeMalformedResult, op, "expected 1 record but found %d", len(result.Records))
	}
	return r.decodeRecord(op, result.Records[0], "n")
}

// FindAll retrieves every node with the repository's label. Nodes missing a
// required property (legacy or partially written nodes) are skipped.
func (r *Repository[T]) FindAll(ctx context.Context, op string) ([]*T, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label)).
		Return("n").
		Build()
	if err != nil {
		return nil, fmt.Errorf("%s: could not build query: %w", op, err)
	}

	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, upstream(op, err)
	}

	entities := make([]*T, 0, len(result.Records))
	for _, record := range result.Records {
		node, err := nodeOf(record, "n")
		if err != nil {
			return nil, newError(ErrCodeMalformedResult, op, "%v", err)
		}
		if _, missing := r.meta.missingRequired(node.Props); missing {
			continue
		}
		entity, err := decodeEntity[T](r.meta, formatID(node.Id), node.Props)
		if err != nil {
			return nil, newError(ErrCodeMalformedResult, op, "%v", err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Update replaces every property of the node with the entity's tagged
// properties. Optional fields left nil are removed from the node.
func (r *Repository[T]) Update(ctx context.Context, op, id string, entity *T) (*T, error) {
	nodeID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}

	params := map[string]any{"id": nodeID, "props": encodeEntity(r.meta, entity)}
	result, err := r.runner.Run(ctx, fmt.Sprintf(UpdateNodeByID, r.meta.Label), params)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(result.Records) == 0 {
		return nil, newError(ErrCodeNotFound, op, "%s %s not found", r.meta.Label, id)
	}
	return r.decodeRecord(op, result.Records[0], "n")
}

// Delete removes a node by its identity. It uses DETACH DELETE so every
// relationship the node participates in is removed with it.
//
// Returns:
//
//	true on success, or a NotFound error when nothing matched.
func (r *Repository[T]) Delete(ctx context.Context, op, id string) (bool, error) {
	nodeID, err := parseID(op, id)
	if err != nil {
		return false, err
	}
	result, err := r.runner.Run(ctx, fmt.Sprintf(DeleteNodeByID, r.meta.Label), map[string]any{"id": nodeID})
	if err != nil {
		return false, upstream(op, err)
	}
	return deletedOne(op, result, r.meta.Label, id)
}

// deletedOne interprets a `RETURN count(x) AS deleted` result.
func deletedOne(op string, result *neo4j.EagerResult, what, id string) (bool, error) {
	if len(result.Records) == 0 {
		return false, newError(ErrCodeNotFound, op, "%s %s not found", what, id)
	}
	n, err := countValue(result.Records[0], "deleted")
	if err != nil {
		return false, newError(ErrCodeMalformedResult, op, "%v", err)
	}
	if n == 0 {
		return false, newError(ErrCodeNotFound, op, "%s %s not found", what, id)
	}
	return true, nil
}

func (r *Repository[T]) decodeRecord(op string, record *neo4j.Record, key string) (*T, error) {
	node, err := nodeOf(record, key)
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}
	entity, err := decodeEntity[T](r.meta, formatID(node.Id), node.Props)
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}
	return entity, nil
}

// nodeOf extracts the node returned under key.
func nodeOf(record *neo4j.Record, key string) (neo4j.Node, error) {
	value, ok := record.Get(key)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("could not find return value '%s' in query result", key)
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("return value '%s' is not a node", key)
	}
	return node, nil
}

// relationshipOf extracts the relationship returned under key.
func relationshipOf(record *neo4j.Record, key string) (neo4j.Relationship, error) {
	value, ok := record.Get(key)
	if !ok {
		return neo4j.Relationship{}, fmt.Errorf("could not find return value '%s' in query result", key)
	}
	rel, ok := value.(neo4j.Relationship)
	if !ok {
		return neo4j.Relationship{}, fmt.Errorf("return value '%s' is not a relationship", key)
	}
	return rel, nil
}
