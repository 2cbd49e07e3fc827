package binomial

import "github.com/pkg/errors"

/*
Verify walks the whole forest and returns the first broken invariant it finds:
    * the cached size, tree count, last and min agree with each other and with
      the trees actually present,
    * roots have no parent and strictly increasing ranks starting at last.next,
    * the i-th child of every node has rank i, a tree of rank r holds 2^r nodes,
    * no node has a smaller key than its parent or than min,
    * every item points back at the node holding it.
It takes O(n) and is meant for tests and debugging.
*/
func (h *Heap) Verify() error {
	if h.size == 0 || h.last == nil || h.min == nil || h.numTrees == 0 {
		if h.size != 0 || h.last != nil || h.min != nil || h.numTrees != 0 {
			return errors.Errorf("inconsistent empty heap: size=%d trees=%d last=%t min=%t",
				h.size, h.numTrees, h.last != nil, h.min != nil)
		}
		return nil
	}

	if h.min.parent != nil {
		return errors.Errorf("min %d is not a root", h.min.key())
	}

	minKey := h.min.key()
	count, total, prevRank := 0, 0, -1
	foundMin := false

	r := h.last.next
	for {
		if count == h.numTrees {
			return errors.Errorf("root list longer than %d trees", h.numTrees)
		}
		if r.parent != nil {
			return errors.Errorf("root %d has a parent", r.key())
		}
		if r.rank <= prevRank {
			return errors.Errorf("root ranks not increasing: %d after %d", r.rank, prevRank)
		}

		sz, err := verifyTree(r, minKey)
		if err != nil {
			return err
		}
		total += sz
		count++
		prevRank = r.rank
		if r == h.min {
			foundMin = true
		}

		if r == h.last {
			break
		}
		if r.next == nil {
			return errors.Errorf("root list broken after %d", r.key())
		}
		r = r.next
	}

	if count != h.numTrees {
		return errors.Errorf("found %d trees, expected %d", count, h.numTrees)
	}
	if total != h.size {
		return errors.Errorf("found %d items, expected %d", total, h.size)
	}
	if !foundMin {
		return errors.Errorf("min %d is not on the root list", minKey)
	}
	return nil
}

func verifyTree(n *node, minKey int) (int, error) {
	if n.item == nil || n.item.node != n {
		return 0, errors.New("item does not point back at its node")
	}
	if n.key() <= 0 {
		return 0, errors.Errorf("non positive key %d", n.key())
	}
	if n.key() < minKey {
		return 0, errors.Errorf("key %d is smaller than min %d", n.key(), minKey)
	}

	if n.rank == 0 {
		if n.child != nil {
			return 0, errors.Errorf("leaf %d has a child", n.key())
		}
		return 1, nil
	}
	if n.child == nil {
		return 0, errors.Errorf("node %d of rank %d has no children", n.key(), n.rank)
	}

	size := 1
	c := n.child.next
	for i := 0; i < n.rank; i++ {
		if c.parent != n {
			return 0, errors.Errorf("child %d of %d has the wrong parent", c.key(), n.key())
		}
		if c.rank != i {
			return 0, errors.Errorf("child %d of %d has rank %d, expected %d", i, n.key(), c.rank, i)
		}
		if c.key() < n.key() {
			return 0, errors.Errorf("heap order broken: %d below %d", c.key(), n.key())
		}

		sz, err := verifyTree(c, minKey)
		if err != nil {
			return 0, err
		}
		size += sz
		c = c.next
	}

	if c != n.child.next {
		return 0, errors.Errorf("node %d has more than %d children", n.key(), n.rank)
	}
	if size != 1<<n.rank {
		return 0, errors.Errorf("tree of rank %d at %d holds %d nodes", n.rank, n.key(), size)
	}
	return size, nil
}
