package db

import "github.com/tordrt/pgscaffold/internal/schema"

// groupedRows collects rows under a composite key, preserving the order in
// which keys were first seen and the order of rows within each key
type groupedRows[T any] struct {
	keys   []schema.TableKey
	groups map[schema.TableKey][]T
}

func newGroupedRows[T any]() *groupedRows[T] {
	return &groupedRows[T]{groups: make(map[schema.TableKey][]T)}
}

func (g *groupedRows[T]) add(key schema.TableKey, row T) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], row)
}

// each visits every group in first-seen order, stopping at the first error
func (g *groupedRows[T]) each(fn func(key schema.TableKey, rows []T) error) error {
	for _, key := range g.keys {
		if err := fn(key, g.groups[key]); err != nil {
			return err
		}
	}
	return nil
}
