package graph

import (
	"container/heap"
	"slices"
	"strings"
)

// Compile validates the pending passes and computes their execution order.
//
// Every pass writing a resource is ordered before every pass reading it. A
// pass that reads and writes the same resource does not depend on itself.
// Among passes with no ordering constraint, insertion order wins.
//
// On error the graph stays in Building with its passes intact.
func (g *Graph) Compile() error {
	if g.state == StateExecuting {
		return withMeta(ErrNotCompiled, "compile during execute")
	}
	g.state = StateBuilding
	g.order = nil

	if err := g.validate(); err != nil {
		return err
	}
	adj := g.edges()
	if err := g.findCycle(adj); err != nil {
		return err
	}
	g.order = topoOrder(adj)
	g.state = StateCompiled
	g.debug("graph: compiled", "passes", len(g.order), "order", strings.Join(g.Order(), ","))
	return nil
}

func (g *Graph) validate() error {
	seen := make(map[string]struct{}, len(g.passes))
	for _, p := range g.passes {
		if p.Name == "" {
			return withMeta(ErrEmptyName, "compile")
		}
		if _, dup := seen[p.Name]; dup {
			return withMeta(ErrDuplicatePass, "compile", "pass", p.Name)
		}
		seen[p.Name] = struct{}{}

		for _, h := range p.Reads {
			if g.lookup(h) == nil {
				return withMeta(ErrUnknownResource, "compile", "pass", p.Name, "handle", uint32(h), "access", "read")
			}
		}
		for _, h := range p.Writes {
			if g.lookup(h) == nil {
				return withMeta(ErrUnknownResource, "compile", "pass", p.Name, "handle", uint32(h), "access", "write")
			}
		}
	}
	return nil
}

// edges returns the writer-to-reader adjacency between pass indices, each
// list sorted and free of duplicates.
func (g *Graph) edges() [][]int {
	writers := make(map[Handle][]int)
	for i, p := range g.passes {
		for _, h := range p.Writes {
			writers[h] = append(writers[h], i)
		}
	}
	adj := make([][]int, len(g.passes))
	for j, p := range g.passes {
		for _, h := range p.Reads {
			for _, i := range writers[h] {
				if i != j {
					adj[i] = append(adj[i], j)
				}
			}
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return adj
}

// findCycle runs a three-color depth-first search and reports the first
// cycle found as a pass path.
func (g *Graph) findCycle(adj [][]int) error {
	const (
		unvisited = iota
		visiting
		done
	)
	color := make([]uint8, len(adj))
	var path []int

	var visit func(n int) error
	visit = func(n int) error {
		color[n] = visiting
		path = append(path, n)
		for _, m := range adj[n] {
			switch color[m] {
			case visiting:
				return g.cycleError(path, m)
			case unvisited:
				if err := visit(m); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = done
		return nil
	}

	for n := range adj {
		if color[n] == unvisited {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) cycleError(path []int, back int) error {
	start := slices.Index(path, back)
	names := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		names = append(names, g.passes[n].Name)
	}
	names = append(names, g.passes[back].Name)
	return withMeta(ErrCycleDetected, "compile",
		"cycle", strings.Join(names, " -> "),
		"passes", names[:len(names)-1])
}

// topoOrder is Kahn's algorithm with the ready set ordered by insertion
// index. adj must be acyclic.
func topoOrder(adj [][]int) []int {
	indeg := make([]int, len(adj))
	for _, out := range adj {
		for _, m := range out {
			indeg[m]++
		}
	}
	ready := &indexHeap{}
	for n, d := range indeg {
		if d == 0 {
			heap.Push(ready, n)
		}
	}
	order := make([]int, 0, len(adj))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		order = append(order, n)
		for _, m := range adj[n] {
			if indeg[m]--; indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return order
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
