package rendercache

// ring is an intrusive LRU list with a sentinel node. root.next is the
// most recently used entry and root.prev the least. Not safe for
// concurrent use; the owning shard locks around it.
type ring struct {
	root node
	len  int
}

type node struct {
	key        Key
	entry      Entry
	prev, next *node
}

func (r *ring) init() {
	r.root.prev = &r.root
	r.root.next = &r.root
	r.len = 0
}

func (r *ring) insertFront(n *node) {
	n.prev = &r.root
	n.next = r.root.next
	r.root.next.prev = n
	r.root.next = n
	r.len++
}

func (r *ring) remove(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	r.len--
}

func (r *ring) touch(n *node) {
	if r.root.next == n {
		return
	}
	r.remove(n)
	r.insertFront(n)
}

// oldest returns the least recently used node, or nil when empty.
func (r *ring) oldest() *node {
	if r.len == 0 {
		return nil
	}
	return r.root.prev
}
