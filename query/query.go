// Package query implements the lazy with/without/maybe/changed/batch/any
// query iterator described in the runtime core's Query Semantics: an
// iteration over entities driven by one storage (the "driver"), checked
// against every other storage referenced by the query's modifiers.
package query

import (
	"reflect"

	ecs "github.com/dangerosodavo/ecscore"
)

// Query is built by chaining modifiers and then run with ForEach. It is
// reusable across ticks; nothing about it is consumed by iteration.
type Query struct {
	world   *ecs.World
	driver  ecs.ComponentType
	with    []ecs.ComponentType
	without []ecs.ComponentType
	maybe   []ecs.ComponentType
	changed []ecs.ComponentType
	batch   map[ecs.ComponentType]bool
}

// New builds a query whose iteration order follows driver's storage.
func New(world *ecs.World, driver ecs.ComponentType) *Query {
	return &Query{world: world, driver: driver, batch: make(map[ecs.ComponentType]bool)}
}

func (q *Query) With(types ...ecs.ComponentType) *Query {
	q.with = append(q.with, types...)
	return q
}

func (q *Query) Without(types ...ecs.ComponentType) *Query {
	q.without = append(q.without, types...)
	return q
}

func (q *Query) Maybe(types ...ecs.ComponentType) *Query {
	q.maybe = append(q.maybe, types...)
	return q
}

// Changed restricts matches to entities present in every listed
// component's ChangeList.
func (q *Query) Changed(types ...ecs.ComponentType) *Query {
	q.changed = append(q.changed, types...)
	return q
}

// Batch marks a component whose stored value is itself a slice: matching
// entities yield one Row per slice element instead of one Row for the
// whole slice, in insertion order. Per the runtime core's batch-semantics
// decision this is read-only — there is no write-batch accumulation.
func (q *Query) Batch(t ecs.ComponentType) *Query {
	q.batch[t] = true
	return q
}

// Row is the per-match value the query hands to ForEach's callback.
type Row struct {
	Entity ecs.EntityID
	views  map[ecs.ComponentType]ecs.ComponentView
	// batchIndex is -1 for a non-batch row, or the element index within
	// a Batch-marked component's slice value.
	batchComponent ecs.ComponentType
	batchIndex     int
}

// Get returns the entity's value for t, or the batch element when t is
// the row's batch-marked component and this row represents one element.
func (r Row) Get(t ecs.ComponentType) (any, bool) {
	view, ok := r.views[t]
	if !ok {
		return nil, false
	}
	v, ok := view.Get(r.Entity)
	if !ok {
		return nil, false
	}
	if t == r.batchComponent && r.batchIndex >= 0 {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice || r.batchIndex >= rv.Len() {
			return nil, false
		}
		return rv.Index(r.batchIndex).Interface(), true
	}
	return v, true
}

// ForEach resolves every storage the query references, then iterates the
// driver, checking candidates against with/without/maybe/changed, in turn
// calling fn once per match (or once per batch element for the component
// marked Batch). fn returning false stops iteration early.
func (q *Query) ForEach(fn func(Row) bool) error {
	views := make(map[ecs.ComponentType]ecs.ComponentView)

	driverView, err := q.world.ViewComponent(q.driver)
	if err != nil {
		return err
	}
	views[q.driver] = driverView

	allTypes := append([]ecs.ComponentType{}, q.with...)
	allTypes = append(allTypes, q.without...)
	allTypes = append(allTypes, q.maybe...)
	allTypes = append(allTypes, q.changed...)

	for _, t := range allTypes {
		if _, ok := views[t]; ok {
			continue
		}
		v, err := q.world.ViewComponent(t)
		if err != nil {
			return err
		}
		views[t] = v
	}

	batchType := ecs.ComponentType("")
	for t := range q.batch {
		batchType = t
		break
	}

	stop := false
	driverView.Iterate(func(entity ecs.EntityID, _ any) bool {
		if stop {
			return false
		}
		if !q.matches(entity, views) {
			return true
		}

		if batchType != "" {
			view := views[batchType]
			v, ok := view.Get(entity)
			if !ok {
				return true
			}
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice {
				return true
			}
			for i := 0; i < rv.Len(); i++ {
				row := Row{Entity: entity, views: views, batchComponent: batchType, batchIndex: i}
				if !fn(row) {
					stop = true
					return false
				}
			}
			return !stop
		}

		row := Row{Entity: entity, views: views, batchIndex: -1}
		if !fn(row) {
			stop = true
			return false
		}
		return true
	})

	return nil
}

func (q *Query) matches(entity ecs.EntityID, views map[ecs.ComponentType]ecs.ComponentView) bool {
	for _, t := range q.with {
		if t == q.driver {
			continue
		}
		if !views[t].Has(entity) {
			return false
		}
	}
	for _, t := range q.without {
		if views[t].Has(entity) {
			return false
		}
	}
	for _, t := range q.changed {
		if !views[t].Changes().Has(entity) {
			return false
		}
	}
	return true
}

// Any unions the matches of several queries by entity identity, dropping
// duplicates. Each sub-query's own with/without/maybe/changed/batch
// modifiers apply independently; Any itself adds only the disjunction.
func Any(queries ...*Query) func(fn func(Row) bool) error {
	return func(fn func(Row) bool) error {
		seen := make(map[ecs.EntityID]struct{})
		for _, q := range queries {
			stop := false
			err := q.ForEach(func(row Row) bool {
				if _, dup := seen[row.Entity]; dup {
					return true
				}
				seen[row.Entity] = struct{}{}
				if !fn(row) {
					stop = true
					return false
				}
				return true
			})
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return nil
	}
}
