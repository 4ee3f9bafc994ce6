package collection

import (
	"fmt"
	"slices"
)

// Catalog is the declarative table of served collections and nested routes.
type Catalog struct {
	byName  map[string]Collection
	aliases map[string]string
	names   []string
	nested  map[nestedKey]Nested
}

type nestedKey struct {
	parent string
	route  string
}

// NewCatalog validates collections and nested routes and builds a Catalog.
func NewCatalog(cols []Collection, aliases map[string]string, nested []Nested) (*Catalog, error) {
	c := &Catalog{
		byName:  make(map[string]Collection, len(cols)),
		aliases: make(map[string]string, len(aliases)),
		nested:  make(map[nestedKey]Nested, len(nested)),
	}
	for _, col := range cols {
		if _, dup := c.byName[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate collection: %s", col.Name())
		}
		c.byName[col.Name()] = col
		c.names = append(c.names, col.Name())
	}
	slices.Sort(c.names)

	for alias, target := range aliases {
		if _, ok := c.byName[target]; !ok {
			return nil, fmt.Errorf("alias %q targets unknown collection %q", alias, target)
		}
		c.aliases[alias] = target
	}

	for _, n := range nested {
		if _, ok := c.byName[n.Parent]; !ok {
			return nil, fmt.Errorf("nested route %q: unknown parent %q", n.Route, n.Parent)
		}
		child, ok := c.byName[n.Child]
		if !ok {
			return nil, fmt.Errorf("nested route %s/%s: unknown child %q", n.Parent, n.Route, n.Child)
		}
		if _, ok := child.Scope(n.ScopeField); !ok {
			return nil, fmt.Errorf("nested route %s/%s: %q has no scope field %q",
				n.Parent, n.Route, n.Child, n.ScopeField)
		}
		if n.ByLevel {
			if _, ok := child.Scope("level"); !ok {
				return nil, fmt.Errorf("nested route %s/%s: %q has no level field", n.Parent, n.Route, n.Child)
			}
		}
		key := nestedKey{parent: n.Parent, route: n.Route}
		if _, dup := c.nested[key]; dup {
			return nil, fmt.Errorf("duplicate nested route %s/%s", n.Parent, n.Route)
		}
		c.nested[key] = n
	}
	return c, nil
}

// Lookup returns the collection served under name (aliases resolved).
func (c *Catalog) Lookup(name string) (Collection, bool) {
	if target, ok := c.aliases[name]; ok {
		name = target
	}
	col, ok := c.byName[name]
	return col, ok
}

// Names returns the canonical collection names in sorted order.
func (c *Catalog) Names() []string { return c.names }

// All returns every collection in name order.
func (c *Catalog) All() []Collection {
	out := make([]Collection, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

// Nested returns the nested route declared for parent (aliases resolved).
func (c *Catalog) Nested(parent, route string) (Nested, bool) {
	if target, ok := c.aliases[parent]; ok {
		parent = target
	}
	n, ok := c.nested[nestedKey{parent: parent, route: route}]
	return n, ok
}
