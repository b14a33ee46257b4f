package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Client. It backs tests and local runs; it keeps
// the same write-sentinel and snapshot semantics the managed backend offers.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	listeners   map[int]*memListener
	nextID      int
	now         func() time.Time
}

type memListener struct {
	collection string
	query      Query
	notify     chan struct{}
	out        chan []Doc
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]map[string]any),
		listeners:   make(map[int]*memListener),
		now:         time.Now,
	}
}

// SetNow overrides the store clock, for deterministic tests.
func (m *MemStore) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements Client.
func (m *MemStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coll, ok := m.collections[collection]
	if !ok {
		return Doc{}, ErrNotFound
	}
	data, ok := coll[id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return Doc{ID: id, Data: deepCopyMap(data)}, nil
}

// Query implements Client.
func (m *MemStore) Query(ctx context.Context, collection string, q Query) ([]Doc, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runQuery(collection, q), nil
}

// Add implements Client.
func (m *MemStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	id := uuid.NewString()
	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]map[string]any)
		m.collections[collection] = coll
	}
	data := make(map[string]any, len(fields))
	now := m.now()
	for k, v := range fields {
		applyField(data, k, v, now)
	}
	coll[id] = data
	m.mu.Unlock()

	m.notifyListeners(collection)
	return id, nil
}

// Set creates or replaces a document with a known id. It is not part of the
// Client contract; tests and seeding use it directly.
func (m *MemStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]map[string]any)
		m.collections[collection] = coll
	}
	data := make(map[string]any, len(fields))
	now := m.now()
	for k, v := range fields {
		applyField(data, k, v, now)
	}
	coll[id] = data
	m.mu.Unlock()

	m.notifyListeners(collection)
	return nil
}

// Update implements Client.
func (m *MemStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	coll := m.collections[collection]
	if coll == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	data, ok := coll[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	now := m.now()
	for k, v := range fields {
		applyField(data, k, v, now)
	}
	m.mu.Unlock()

	m.notifyListeners(collection)
	return nil
}

// Delete implements Client.
func (m *MemStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	if coll, ok := m.collections[collection]; ok {
		delete(coll, id)
	}
	m.mu.Unlock()

	m.notifyListeners(collection)
	return nil
}

// Listen implements Client.
func (m *MemStore) Listen(ctx context.Context, collection string, q Query) (<-chan []Doc, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	l := &memListener{
		collection: collection,
		query:      q,
		notify:     make(chan struct{}, 1),
		out:        make(chan []Doc, 1),
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
			close(l.out)
		}()

		// initial snapshot, then one snapshot per change notification
		m.emitSnapshot(l)
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.notify:
				m.emitSnapshot(l)
			}
		}
	}()

	return l.out, nil
}

func (m *MemStore) emitSnapshot(l *memListener) {
	m.mu.RLock()
	docs := m.runQuery(l.collection, l.query)
	m.mu.RUnlock()

	// latest snapshot wins if the consumer is behind
	select {
	case l.out <- docs:
	default:
		select {
		case <-l.out:
		default:
		}
		l.out <- docs
	}
}

func (m *MemStore) notifyListeners(collection string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listeners {
		if l.collection != collection {
			continue
		}
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
}

// runQuery assumes m.mu is held.
func (m *MemStore) runQuery(collection string, q Query) []Doc {
	var out []Doc
	for id, data := range m.collections[collection] {
		if matchesAll(id, data, q.Filters) {
			out = append(out, Doc{ID: id, Data: deepCopyMap(data)})
		}
	}
	if q.OrderBy != "" {
		sort.Slice(out, func(i, j int) bool {
			less := compareValues(lookupPath(out[i].Data, q.OrderBy), lookupPath(out[j].Data, q.OrderBy)) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func validateQuery(q Query) error {
	for _, f := range q.Filters {
		if f.Op != OpIn {
			continue
		}
		if vals, ok := toSlice(f.Value); ok && len(vals) > BatchGetLimit {
			return ErrBatchTooLarge
		}
	}
	return nil
}

func matchesAll(id string, data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(id, data, f) {
			return false
		}
	}
	return true
}

func matches(id string, data map[string]any, f Filter) bool {
	var value any
	if f.Field == DocumentID {
		value = id
	} else {
		value = lookupPath(data, f.Field)
	}

	switch f.Op {
	case OpEqual:
		return valuesEqual(value, f.Value)
	case OpIn:
		vals, ok := toSlice(f.Value)
		if !ok {
			return false
		}
		for _, v := range vals {
			if valuesEqual(value, v) {
				return true
			}
		}
		return false
	case OpArrayContains:
		vals, ok := toSlice(value)
		if !ok {
			return false
		}
		for _, v := range vals {
			if valuesEqual(v, f.Value) {
				return true
			}
		}
		return false
	}
	return false
}

// applyField resolves write sentinels and dotted paths into data.
func applyField(data map[string]any, key string, value any, now time.Time) {
	parts := strings.Split(key, ".")
	target := data
	for _, p := range parts[:len(parts)-1] {
		next, ok := target[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[p] = next
		}
		target = next
	}
	field := parts[len(parts)-1]

	t, isTransform := value.(transform)
	if !isTransform {
		target[field] = deepCopyValue(value)
		return
	}

	switch t.kind {
	case transformServerTimestamp:
		target[field] = now
	case transformIncrement:
		target[field] = toInt64(target[field]) + t.n
	case transformArrayUnion:
		current, _ := toSlice(target[field])
		for _, v := range t.values {
			found := false
			for _, c := range current {
				if valuesEqual(c, v) {
					found = true
					break
				}
			}
			if !found {
				current = append(current, deepCopyValue(v))
			}
		}
		target[field] = current
	case transformArrayRemove:
		current, _ := toSlice(target[field])
		kept := current[:0]
		for _, c := range current {
			remove := false
			for _, v := range t.values {
				if valuesEqual(c, v) {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, c)
			}
		}
		target[field] = append([]any(nil), kept...)
	}
}

func lookupPath(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var current any = data
	for _, p := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[p]
	}
	return current
}

func valuesEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if an, ok := toNumber(a); ok {
		bn, bok := toNumber(b)
		return bok && an == bn
	}
	switch a.(type) {
	case []any, []string:
		as, _ := toSlice(a)
		bs, ok := toSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 1
		}
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case string:
		bv, ok := b.(string)
		if !ok {
			return 1
		}
		return strings.Compare(av, bv)
	}
	if an, ok := toNumber(a); ok {
		bn, bok := toNumber(b)
		if !bok {
			return 1
		}
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	if a == nil && b != nil {
		return -1
	}
	return 0
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toInt64(v any) int64 {
	if n, ok := toNumber(v); ok {
		return int64(n)
	}
	return 0
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case nil:
		return nil, true
	}
	return nil, false
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	}
	return v
}
