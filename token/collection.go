package token

// Collection is an arena of tokens with generation-checked handles and
// stable slot reuse.
type Collection struct {
	nextID int
	gen    []int
	free   []int
	slots  []*Token

	onAdd    []func(Handle, *Token)
	onRemove []func(Handle, *Token)
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// OnAdd registers a hook invoked after each placement.
func (c *Collection) OnAdd(fn func(Handle, *Token)) {
	if c != nil && fn != nil {
		c.onAdd = append(c.onAdd, fn)
	}
}

// OnRemove registers a hook invoked before a token's slot is recycled.
func (c *Collection) OnRemove(fn func(Handle, *Token)) {
	if c != nil && fn != nil {
		c.onRemove = append(c.onRemove, fn)
	}
}

// Place adds a token and returns its handle.
func (c *Collection) Place(t *Token) Handle {
	if c == nil || t == nil {
		return Handle{}
	}
	var id int
	if len(c.free) > 0 {
		id = c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
	} else {
		c.nextID++
		id = c.nextID
		c.gen = append(c.gen, 0)
		c.slots = append(c.slots, nil)
	}
	idx := id - 1
	c.slots[idx] = t
	h := Handle{ID: id, Gen: c.gen[idx]}
	for _, fn := range c.onAdd {
		fn(h, t)
	}
	return h
}

// Remove deletes a token, firing removal hooks first. Stale handles are a
// no-op.
func (c *Collection) Remove(h Handle) bool {
	t, ok := c.Get(h)
	if !ok {
		return false
	}
	for _, fn := range c.onRemove {
		fn(h, t)
	}
	idx := h.ID - 1
	c.gen[idx]++
	c.slots[idx] = nil
	c.free = append(c.free, h.ID)
	return true
}

// Get resolves a handle to its token.
func (c *Collection) Get(h Handle) (*Token, bool) {
	if c == nil || h.ID <= 0 || h.ID > len(c.gen) {
		return nil, false
	}
	idx := h.ID - 1
	if c.gen[idx] != h.Gen || c.slots[idx] == nil {
		return nil, false
	}
	return c.slots[idx], true
}

// Alive reports whether the handle still refers to a placed token.
func (c *Collection) Alive(h Handle) bool {
	_, ok := c.Get(h)
	return ok
}

// Each visits every live token in slot order.
func (c *Collection) Each(fn func(Handle, *Token)) {
	if c == nil || fn == nil {
		return
	}
	for idx, t := range c.slots {
		if t == nil {
			continue
		}
		fn(Handle{ID: idx + 1, Gen: c.gen[idx]}, t)
	}
}

// Len counts live tokens.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, t := range c.slots {
		if t != nil {
			n++
		}
	}
	return n
}
