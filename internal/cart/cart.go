// AngelaMos | 2026
// cart.go

package cart

// Cart is a multiset of product ids over an insertion-ordered sequence.
// Pricing treats it as unordered, but index-based removal depends on the
// underlying order being stable.
type Cart struct {
	items []string
}

func New(items []string) *Cart {
	copied := make([]string, len(items))
	copy(copied, items)
	return &Cart{items: copied}
}

// Add appends one unit of the product. Adding an item already present
// increases its quantity; there is no separate "increase" operation.
func (c *Cart) Add(productID string) {
	c.items = append(c.items, productID)
}

// RemoveOne removes the first occurrence of the product, decreasing its
// quantity by one. Reports whether anything was removed.
func (c *Cart) RemoveOne(productID string) bool {
	for i, pid := range c.items {
		if pid == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops every occurrence of the product.
func (c *Cart) RemoveAll(productID string) {
	kept := c.items[:0]
	for _, pid := range c.items {
		if pid != productID {
			kept = append(kept, pid)
		}
	}
	c.items = kept
}

// RemoveAt removes the entry at the given position. Out-of-bounds indexes
// are a silent no-op: repeated removal clicks from a stale page must stay
// idempotent.
func (c *Cart) RemoveAt(index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
}

// Contents returns the multiset view: product id to quantity.
func (c *Cart) Contents() map[string]int {
	contents := make(map[string]int, len(c.items))
	for _, pid := range c.items {
		contents[pid]++
	}
	return contents
}

// Items returns a copy of the underlying sequence.
func (c *Cart) Items() []string {
	copied := make([]string, len(c.items))
	copy(copied, c.items)
	return copied
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.items = nil
}
