package binomial

/*
Item is the handle returned by Insert. It stays valid for the whole time the
key is in the heap even though the node holding it changes: decrease-key moves
items between nodes instead of moving nodes around.
*/
type Item struct {
	key     int
	payload any

	// node currently holding this item, nil once the item has left the heap.
	node *node
}

// Key returns the current key of the item.
func (it *Item) Key() int {
	return it.key
}

// Payload returns the opaque data passed to Insert.
func (it *Item) Payload() any {
	return it.payload
}

// InHeap reports whether the item is still held by some heap.
func (it *Item) InHeap() bool {
	return it != nil && it.node != nil
}

/*
A node of a binomial tree.

The next pointer has two roles. For a node with a parent it links the circular
ring of its siblings; for a root it links the circular root list of the heap.
A node of rank r has r children and the tree below it holds 2^r nodes.
*/
type node struct {
	item   *Item
	parent *node

	// child is the last element of the child ring, child.next is the
	// lowest ranked child. nil for a leaf.
	child *node
	next  *node

	rank int
}

func newNode(item *Item) *node {
	n := &node{item: item}
	item.node = n
	return n
}

func (n *node) key() int {
	return n.item.key
}

/*
link combines two trees of equal rank into one tree of rank+1 and returns the
new root. The first argument wins ties. Ranks are not checked, linking trees of
different rank silently produces a malformed tree.

The loser becomes the new last element of the winner's child ring, so reading
the ring from child.next still yields children in increasing rank.
*/
func link(a, b *node) *node {
	if b.key() < a.key() {
		a, b = b, a
	}

	b.parent = a
	if a.child == nil {
		b.next = b
	} else {
		b.next = a.child.next
		a.child.next = b
	}
	a.child = b
	a.rank++

	return a
}

// root walks parent links up to the root of the tree holding n.
func (n *node) root() *node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

/*
children returns the children of n in increasing rank order. Callers that
relink nodes must collect first; following next pointers while they are
rewritten would skip nodes.
*/
func (n *node) children() []*node {
	if n.child == nil {
		return nil
	}
	kids := make([]*node, 0, n.rank)
	c := n.child.next
	for i := 0; i < n.rank; i++ {
		kids = append(kids, c)
		c = c.next
	}
	return kids
}
