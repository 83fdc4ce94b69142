package neorecipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Row is the only thing this package needs from a result record: named access
// to heterogeneous values. *neo4j.Record satisfies it.
type Row interface {
	Get(key string) (any, bool)
}

// rowsOf adapts driver records to the Row contract.
func rowsOf(records []*neo4j.Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = rec
	}
	return rows
}

// parseID converts a public identifier into the store's native integer id.
func parseID(op, id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n < 0 {
		return 0, newError(ErrCodeInvalidID, op, "invalid id %q", id)
	}
	return n, nil
}

// formatID is the inverse of parseID.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// idValue reads an identity column. ok is false when the column is absent
// or null.
func idValue(row Row, key string) (id string, ok bool, err error) {
	v, present := row.Get(key)
	if !present || v == nil {
		return "", false, nil
	}
	switch t := v.(type) {
	case int64:
		return formatID(t), true, nil
	case int:
		return strconv.Itoa(t), true, nil
	case string:
		return t, true, nil
	default:
		return "", false, fmt.Errorf("column %q: unexpected id type %T", key, v)
	}
}

// stringValue reads a string column, returning "" for null.
func stringValue(row Row, key string) (string, error) {
	s, err := optionalString(row, key)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

func optionalString(row Row, key string) (*string, error) {
	v, present := row.Get(key)
	if !present || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("column %q: expected string, got %T", key, v)
	}
	return &s, nil
}

// floatValue reads a numeric column. Integers stored by other writers are
// widened.
func floatValue(row Row, key string) (float64, bool, error) {
	v, present := row.Get(key)
	if !present || v == nil {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		return t, true, nil
	case int64:
		return float64(t), true, nil
	case int:
		return float64(t), true, nil
	default:
		return 0, false, fmt.Errorf("column %q: expected number, got %T", key, v)
	}
}

// countValue reads an integer aggregate such as count(n).
func countValue(row Row, key string) (int64, error) {
	v, present := row.Get(key)
	if !present || v == nil {
		return 0, nil
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("column %q: expected integer, got %T", key, v)
	}
}
