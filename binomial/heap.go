package binomial

import "github.com/pkg/errors"

/*
Heap is a binomial heap: a forest of binomial trees whose roots form a circular
list ordered by strictly increasing rank, no two roots sharing a rank. last is
the highest ranked root and last.next the lowest. min always points at a root
holding the smallest key of the whole heap.

A Heap is not safe for concurrent use.
*/
type Heap struct {
	last     *node
	min      *node
	size     int
	numTrees int
}

/*
Create a new, empty binomial heap.
*/
func NewHeap() *Heap {
	return &Heap{}
}

/*
Insert a new key with its payload and return the handle to it. The handle is
needed later for DecreaseKey and Delete.
Inserting into an empty heap just adds the node, otherwise the node is wrapped
in a one tree heap and melded in, leaving the carries to the union sweep.
*/
func (h *Heap) Insert(key int, payload any) (*Item, error) {
	if key <= 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "insert %d", key)
	}

	item := &Item{key: key, payload: payload}
	n := newNode(item)

	if h.Empty() {
		h.addNode(n)
		return item, nil
	}

	single := &Heap{}
	single.addNode(n)
	h.meld(single)
	return item, nil
}

/*
Return the item with the minimum key, nil if the heap is empty. Among equal
keys any of them may be returned.
*/
func (h *Heap) FindMin() *Item {
	if h.min == nil {
		return nil
	}
	return h.min.item
}

/*
Delete the minimum item and return it. The minimum root is dissolved:
    1. Its children become a heap of their own.
    2. The other roots become another heap.
    3. Those two are melded and the result replaces the receiver.
*/
func (h *Heap) DeleteMin() (*Item, error) {
	if h.Empty() {
		return nil, errors.WithStack(ErrEmptyHeap)
	}

	m := h.min
	kids := h.childrenHeap(m)
	rest := h.detach(m)
	kids.meld(rest)
	h.copyHeap(kids)

	item := m.item
	item.node = nil
	m.item, m.child, m.next = nil, nil, nil
	return item, nil
}

/*
Decrease the key of item by diff, 0 < diff < key.
The item climbs toward the root by trading places with the item of its parent
while the parent's key is larger. Nodes never move, so the tree keeps its shape
and every other handle keeps pointing at its own key.
*/
func (h *Heap) DecreaseKey(item *Item, diff int) error {
	if err := h.owns(item); err != nil {
		return err
	}
	if diff <= 0 || diff >= item.key {
		return errors.Wrapf(ErrInvalidDiff, "decrease key %d by %d", item.key, diff)
	}

	item.key -= diff
	h.siftUp(item, false)

	if item.key < h.min.key() {
		h.min = item.node
	}
	return nil
}

/*
Delete an arbitrary item. The item is lifted to the root of its tree as if its
key were below the current minimum, made the minimum and removed with
DeleteMin. Its key is left untouched, so equal keys elsewhere in the heap do
not interfere.
*/
func (h *Heap) Delete(item *Item) error {
	if err := h.owns(item); err != nil {
		return err
	}

	h.siftUp(item, true)
	h.min = item.node
	_, err := h.DeleteMin()
	return err
}

/*
Meld other into the receiver. other is consumed: its trees now belong to the
receiver and it is left empty.
    1. merge interleaves both root lists by rank, at most two roots per rank.
    2. unionTrees links equal ranks the way binary addition carries.
    3. min is walked up to its root, ties during linking may have put it under
       a root of the same key.
*/
func (h *Heap) Meld(other *Heap) error {
	if other == nil {
		return nil
	}
	if other == h {
		return errors.WithStack(ErrSelfMeld)
	}
	h.meld(other)
	return nil
}

// Size returns the number of items in the heap.
func (h *Heap) Size() int {
	return h.size
}

func (h *Heap) Empty() bool {
	return h.size == 0
}

// NumTrees returns the number of binomial trees in the root list.
func (h *Heap) NumTrees() int {
	return h.numTrees
}

// ====== Helper functions =======

func (h *Heap) meld(other *Heap) {
	if other.Empty() {
		return
	}

	if h.Empty() {
		h.copyHeap(other)
	} else {
		boundary := h.merge(other)
		h.unionTrees(boundary)
	}
	other.reset()

	for h.min.parent != nil {
		h.min = h.min.parent
	}
}

/*
addNode appends a tree of any rank after last and makes it the new last. Ranks
are not consolidated, callers add trees in increasing rank or run unionTrees
afterwards.
*/
func (h *Heap) addNode(n *node) {
	if h.last == nil {
		n.next = n
		h.last = n
		h.min = n
		h.size = 1 << n.rank
		h.numTrees = 1
		return
	}

	n.next = h.last.next
	h.last.next = n
	h.last = n
	if n.key() < h.min.key() {
		h.min = n
	}
	h.size += 1 << n.rank
	h.numTrees++
}

/*
merge splices both root lists into one ring ordered by non-decreasing rank and
sums up the caches. It returns the top rank of the heap whose top rank is the
smaller one: past that rank only trees of the other heap remain, so their ranks
are already distinct.
*/
func (h *Heap) merge(other *Heap) int {
	boundary := h.last.rank
	if other.last.rank < boundary {
		boundary = other.last.rank
	}

	a, b := h.last.next, other.last.next
	h.last.next, other.last.next = nil, nil

	var head, tail *node
	for a != nil || b != nil {
		var n *node
		if b == nil || (a != nil && a.rank <= b.rank) {
			n, a = a, a.next
		} else {
			n, b = b, b.next
		}

		if tail == nil {
			head = n
		} else {
			tail.next = n
		}
		tail = n
	}
	tail.next = head

	h.last = tail
	if other.min.key() < h.min.key() {
		h.min = other.min
	}
	h.size += other.size
	h.numTrees += other.numTrees
	return boundary
}

/*
unionTrees sweeps the merged root list once and links roots of equal rank.

The list is opened at last so the sweep runs over a plain linked list from the
lowest rank up; cur is the tree being built and may be a carry. Every rank
occurs at most three times (one from each heap plus a carry):
    * cur and next differ: move on, or stop when past the boundary since
      nothing can collide any more.
    * three in a row: keep cur, the next two produce the carry.
    * two in a row: link them, the result becomes cur.
The ring is closed again at the end.
*/
func (h *Heap) unionTrees(boundary int) {
	if h.numTrees < 2 {
		return
	}

	head, tail := h.last.next, h.last
	tail.next = nil

	var prev *node
	cur := head
	for cur.next != nil {
		next := cur.next

		if cur.rank != next.rank {
			if cur.rank >= boundary {
				break
			}
			prev, cur = cur, next
			continue
		}

		if next.next != nil && next.next.rank == cur.rank {
			prev, cur = cur, next
			continue
		}

		after := next.next
		cur = link(cur, next)
		cur.next = after
		if prev == nil {
			head = cur
		} else {
			prev.next = cur
		}
		h.numTrees--
	}

	if cur.next == nil {
		tail = cur
	}
	tail.next = head
	h.last = tail
}

/*
childrenHeap detaches the children of n into a new heap, each becoming a root.
The child ring is read from child.next, lowest rank first, which is the order
addNode expects.
*/
func (h *Heap) childrenHeap(n *node) *Heap {
	kids := &Heap{}
	for _, c := range n.children() {
		c.parent = nil
		kids.addNode(c)
	}
	return kids
}

// detach returns a heap of every root except n. Its children are left alone.
func (h *Heap) detach(n *node) *Heap {
	rest := &Heap{}
	for _, r := range h.roots() {
		if r != n {
			rest.addNode(r)
		}
	}
	return rest
}

/*
roots returns the roots in increasing rank order. addNode rewrites next
pointers, so callers that move roots around iterate over this slice.
*/
func (h *Heap) roots() []*node {
	if h.last == nil {
		return nil
	}
	out := make([]*node, 0, h.numTrees)
	r := h.last.next
	for i := 0; i < h.numTrees; i++ {
		out = append(out, r)
		r = r.next
	}
	return out
}

func (h *Heap) copyHeap(other *Heap) {
	h.last = other.last
	h.min = other.min
	h.size = other.size
	h.numTrees = other.numTrees
}

func (h *Heap) reset() {
	*h = Heap{}
}

/*
siftUp trades item with the item of its parent while the parent key is larger,
or all the way up to the root when toRoot is set. Back references follow every
trade.
*/
func (h *Heap) siftUp(item *Item, toRoot bool) {
	cur := item.node
	for cur.parent != nil && (toRoot || item.key < cur.parent.key()) {
		p := cur.parent

		cur.item = p.item
		cur.item.node = cur

		p.item = item
		item.node = p

		cur = p
	}
}

/*
owns checks that item is held by one of the receiver's trees. The item's root
must be on the root list, walking up a tree and along the roots both take
O(log n).
*/
func (h *Heap) owns(item *Item) error {
	if !item.InHeap() {
		return errors.WithStack(ErrNotInHeap)
	}

	r := item.node.root()
	for _, root := range h.roots() {
		if root == r {
			return nil
		}
	}
	return errors.Wrapf(ErrNotInHeap, "item with key %d", item.key)
}
