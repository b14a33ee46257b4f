package store

import (
	"context"
	"errors"
)

// BatchGetLimit is the ceiling the backend imposes on "id in set" queries.
// Callers fetching more ids than this must chunk (see services/people).
const BatchGetLimit = 10

// DocumentID is the pseudo-field used to filter on document ids.
const DocumentID = "__name__"

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = errors.New("in query exceeds batch limit")
)

// Doc is a document snapshot: its id plus the raw field map.
type Doc struct {
	ID   string
	Data map[string]any
}

// Op enumerates the filter operators the backend supports.
type Op string

const (
	OpEqual         Op = "=="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
)

// Filter is a single field condition.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes a filtered, optionally ordered and limited read.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Client is the document store collaborator. Only this interface is consumed
// by the service layer; a managed backend plugs in behind it.
type Client interface {
	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Doc, error)
	// Query returns documents matching q. An OpIn filter on DocumentID may
	// carry at most BatchGetLimit ids; larger sets fail with ErrBatchTooLarge.
	Query(ctx context.Context, collection string, q Query) ([]Doc, error)
	// Add creates a document with a generated id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Update applies a partial update. Values may be write sentinels
	// (ServerTimestamp, Increment, ArrayUnion, ArrayRemove) and keys may be
	// dotted paths into nested maps.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Listen streams the current result set of q on every change to the
	// collection, starting with an initial snapshot. The channel closes when
	// ctx is done.
	Listen(ctx context.Context, collection string, q Query) (<-chan []Doc, error)
}

// transformKind tags a write sentinel.
type transformKind int

const (
	transformServerTimestamp transformKind = iota
	transformIncrement
	transformArrayUnion
	transformArrayRemove
)

type transform struct {
	kind   transformKind
	n      int64
	values []any
}

// ServerTimestamp is a write sentinel resolved to the store's clock.
func ServerTimestamp() any { return transform{kind: transformServerTimestamp} }

// Increment is a write sentinel adding n to the current numeric value.
func Increment(n int64) any { return transform{kind: transformIncrement, n: n} }

// ArrayUnion is a write sentinel appending values not already present.
func ArrayUnion(values ...any) any {
	return transform{kind: transformArrayUnion, values: values}
}

// ArrayRemove is a write sentinel removing all occurrences of values.
func ArrayRemove(values ...any) any {
	return transform{kind: transformArrayRemove, values: values}
}
