package store

import (
	"cmp"
	"slices"
)

// index holds the in-memory copy of the records keyed by ID.
type index struct {
	products map[int]Product
}

func newIndex() *index {
	return &index{
		products: make(map[int]Product),
	}
}

func (x *index) get(id int) (Product, bool) {
	p, ok := x.products[id]
	return p, ok
}

// put inserts or replaces the product with the same ID.
func (x *index) put(p Product) {
	x.products[p.ID] = p
}

func (x *index) remove(id int) bool {
	if _, exists := x.products[id]; !exists {
		return false
	}
	delete(x.products, id)
	return true
}

// list returns a fresh slice sorted by ID.
func (x *index) list() []Product {
	list := make([]Product, 0, len(x.products))
	for _, p := range x.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}

func (x *index) len() int {
	return len(x.products)
}
