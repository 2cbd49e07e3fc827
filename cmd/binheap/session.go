package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/contribsys/binheap"
	"github.com/contribsys/binheap/binomial"
	"github.com/contribsys/binheap/cli"
	"github.com/contribsys/binheap/util"
	"github.com/pkg/errors"
)

const helpMsg = `Valid commands:

insert <key> [payload]	insert a positive key, prints its handle
min			show the minimum item
pop			delete and show the minimum item
decrease <#h> <diff>	decrease the key of handle #h by diff
delete <#h>		delete handle #h
size			number of items
trees			number of binomial trees
drain			pop everything in key order
check			verify the heap invariants
new <heap>		create an empty heap
use <heap>		switch the current heap
meld <heap>		meld <heap> into the current heap, <heap> is consumed
heaps			list heaps
version
help`

const defaultHeap = "main"

var errQuit = errors.New("quit")

/*
A session holds named heaps and the handles of every item inserted through it.
Handles are numbered from 1 and are dropped once their item leaves the heap.
*/
type session struct {
	out   io.Writer
	debug bool

	heaps   map[string]*binomial.Heap
	current string

	handles map[int]*binomial.Item
	ids     map[*binomial.Item]int
	lastID  int
}

func newSession(out io.Writer, debug bool) *session {
	return &session{
		out:     out,
		debug:   debug,
		heaps:   map[string]*binomial.Heap{defaultHeap: binomial.NewHeap()},
		current: defaultHeap,
		handles: make(map[int]*binomial.Item),
		ids:     make(map[*binomial.Item]int),
	}
}

// preload fills named heaps from the config file, in name order.
func (s *session) preload(heaps map[string]cli.HeapConfig) error {
	names := make([]string, 0, len(heaps))
	for name := range heaps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		heap, ok := s.heaps[name]
		if !ok {
			heap = binomial.NewHeap()
			s.heaps[name] = heap
		}
		for _, ic := range heaps[name].Items {
			item, err := heap.Insert(ic.Key, ic.Payload)
			if err != nil {
				return errors.Wrapf(err, "preloading heap %q", name)
			}
			s.track(item)
		}
		util.Infof("Preloaded heap %s with %d items", name, heap.Size())
	}
	return nil
}

func (s *session) heap() *binomial.Heap {
	return s.heaps[s.current]
}

func (s *session) execute(cmd []string) error {
	if len(cmd) == 0 || cmd[0] == "" {
		return nil
	}
	util.Debugf("Executing %v on %s", cmd, s.current)

	mutated, err := s.dispatch(cmd[0], cmd[1:])
	if err != nil {
		return err
	}
	if s.debug && mutated {
		if err := s.heap().Verify(); err != nil {
			return errors.Wrapf(err, "heap %s is corrupt after %q", s.current, cmd[0])
		}
	}
	return nil
}

func (s *session) dispatch(first string, args []string) (bool, error) {
	switch first {
	case "exit", "quit":
		return false, errQuit
	case "version":
		fmt.Fprintf(s.out, "%s %s\n", binheap.Name, binheap.Version)
	case "help":
		fmt.Fprintln(s.out, helpMsg)
	case "insert":
		return true, s.insert(args)
	case "min":
		s.show(s.heap().FindMin())
	case "pop":
		return true, s.pop()
	case "decrease":
		return true, s.decrease(args)
	case "delete":
		return true, s.delete(args)
	case "size":
		fmt.Fprintln(s.out, s.heap().Size())
	case "trees":
		fmt.Fprintln(s.out, s.heap().NumTrees())
	case "drain":
		return true, s.drain()
	case "check":
		if err := s.heap().Verify(); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "OK")
	case "new":
		return false, s.newHeap(args)
	case "use":
		return false, s.use(args)
	case "meld":
		return true, s.meld(args)
	case "heaps":
		s.list()
	default:
		return false, fmt.Errorf("Unknown command: %v", first)
	}
	return false, nil
}

func (s *session) insert(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: insert <key> [payload]")
	}
	key, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.Wrap(err, "invalid key")
	}

	item, err := s.heap().Insert(key, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	s.track(item)
	s.show(item)
	return nil
}

func (s *session) pop() error {
	item, err := s.heap().DeleteMin()
	if err != nil {
		return err
	}
	s.show(item)
	s.forget(item)
	return nil
}

func (s *session) decrease(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: decrease <#handle> <diff>")
	}
	item, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	diff, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "invalid diff")
	}

	if err := s.heap().DecreaseKey(item, diff); err != nil {
		return err
	}
	s.show(item)
	return nil
}

func (s *session) delete(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <#handle>")
	}
	item, err := s.lookup(args[0])
	if err != nil {
		return err
	}

	if err := s.heap().Delete(item); err != nil {
		return err
	}
	s.forget(item)
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) drain() error {
	heap := s.heap()
	for !heap.Empty() {
		if err := s.pop(); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) newHeap(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: new <heap>")
	}
	if _, ok := s.heaps[args[0]]; ok {
		return errors.Errorf("heap %s already exists", args[0])
	}
	s.heaps[args[0]] = binomial.NewHeap()
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) use(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use <heap>")
	}
	if _, ok := s.heaps[args[0]]; !ok {
		return errors.Errorf("no such heap: %s", args[0])
	}
	s.current = args[0]
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) meld(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: meld <heap>")
	}
	other, ok := s.heaps[args[0]]
	if !ok {
		return errors.Errorf("no such heap: %s", args[0])
	}

	if err := s.heap().Meld(other); err != nil {
		return err
	}
	delete(s.heaps, args[0])
	util.Log().WithField("from", args[0]).WithField("into", s.current).Debug("Melded heaps")
	fmt.Fprintf(s.out, "OK size=%d trees=%d\n", s.heap().Size(), s.heap().NumTrees())
	return nil
}

func (s *session) list() {
	names := make([]string, 0, len(s.heaps))
	for name := range s.heaps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mark := " "
		if name == s.current {
			mark = "*"
		}
		heap := s.heaps[name]
		fmt.Fprintf(s.out, "%s %s size=%d trees=%d\n", mark, name, heap.Size(), heap.NumTrees())
	}
}

func (s *session) show(item *binomial.Item) {
	if item == nil {
		fmt.Fprintln(s.out, "(empty)")
		return
	}
	line := fmt.Sprintf("#%d key=%d", s.ids[item], item.Key())
	if p, _ := item.Payload().(string); p != "" {
		line += " payload=" + p
	}
	fmt.Fprintln(s.out, line)
}

func (s *session) track(item *binomial.Item) {
	s.lastID++
	s.handles[s.lastID] = item
	s.ids[item] = s.lastID
}

func (s *session) forget(item *binomial.Item) {
	delete(s.handles, s.ids[item])
	delete(s.ids, item)
}

func (s *session) lookup(arg string) (*binomial.Item, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return nil, errors.Errorf("invalid handle: %s", arg)
	}
	item, ok := s.handles[id]
	if !ok {
		return nil, errors.Errorf("no such handle: #%d", id)
	}
	return item, nil
}
