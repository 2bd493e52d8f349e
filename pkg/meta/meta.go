// Package meta holds the per-class metadata tables that back the
// framework's declarative surfaces: lifecycle hook lists (component
// package) and policy configurations (cacheable, lockable, ...).
//
// A class is identified by its reflect.Type. Each class owns one
// table; a table maps an arbitrary string key (a stage name or a
// method name) to an ordered slice of entries, appended in
// registration order. Once a class's table has been sealed, further
// writes are rejected: hook and policy metadata is established at
// declaration time and is immutable thereafter.
package meta

import (
	"fmt"
	"reflect"
	"sync"
)

// Table is a per-class metadata store. The zero value is not usable;
// construct with New.
type Table struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*classEntries
}

type classEntries struct {
	mu      sync.RWMutex
	entries map[string][]any
	order   []string
	sealed  bool
}

// New creates an empty metadata table.
func New() *Table {
	return &Table{byType: make(map[reflect.Type]*classEntries)}
}

func (t *Table) classFor(class reflect.Type) *classEntries {
	t.mu.RLock()
	ce, ok := t.byType[class]
	t.mu.RUnlock()
	if ok {
		return ce
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ce, ok := t.byType[class]; ok {
		return ce
	}
	ce = &classEntries{entries: make(map[string][]any)}
	t.byType[class] = ce
	return ce
}

// Add appends an entry under (class, key). Returns an error if the
// class's table has already been sealed.
func (t *Table) Add(class reflect.Type, key string, entry any) error {
	ce := t.classFor(class)
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if ce.sealed {
		return fmt.Errorf("meta: table for %s is sealed, cannot add %q", class, key)
	}
	if _, ok := ce.entries[key]; !ok {
		ce.order = append(ce.order, key)
	}
	ce.entries[key] = append(ce.entries[key], entry)
	return nil
}

// Get returns the ordered entries registered under (class, key).
func (t *Table) Get(class reflect.Type, key string) []any {
	ce := t.classFor(class)
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	out := make([]any, len(ce.entries[key]))
	copy(out, ce.entries[key])
	return out
}

// Keys returns the keys registered against class, in first-use order.
func (t *Table) Keys(class reflect.Type) []string {
	ce := t.classFor(class)
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	out := make([]string, len(ce.order))
	copy(out, ce.order)
	return out
}

// Seal freezes a class's table; subsequent Add calls for that class
// fail. A class is sealed the first time one of its components is
// constructed, so hook/policy registration must happen before the
// first AsComponent(...).Get() call for that class.
func (t *Table) Seal(class reflect.Type) {
	ce := t.classFor(class)
	ce.mu.Lock()
	ce.sealed = true
	ce.mu.Unlock()
}

// Sealed reports whether class's table has been sealed.
func (t *Table) Sealed(class reflect.Type) bool {
	ce := t.classFor(class)
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	return ce.sealed
}
