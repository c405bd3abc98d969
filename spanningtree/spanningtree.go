// Package spanningtree builds and repairs the spanning tree that the QPID
// protocol runs over. Construction is deterministic and permutation
// invariant: any node computing a tree from the same member set reaches
// the same tree, which is what lets membership changes apply locally
// without a coordinator.
package spanningtree

import (
	"sort"

	"github.com/teranos/waitline/wire"
)

// FromMemberList builds a tree from a set of member ids. Members are
// sorted and deduplicated first so that the result does not depend on
// the order ids were observed in.
func FromMemberList(members []wire.NodeID) wire.Tree {
	sorted := dedupSorted(members)
	tree := wire.Tree{Adjacency: make(map[wire.NodeID][]wire.NodeID, len(sorted))}
	for _, id := range sorted {
		tree.Adjacency[id] = nil
	}

	for i, id := range sorted {
		if i == 0 {
			continue
		}
		existing := sorted[:i]
		best := findBestNode(tree, existing)
		connect(tree, id, best)
	}
	return tree
}

// AddNode returns a copy of tree with node added and connected to
// whichever existing node has the lowest connection cost.
func AddNode(tree wire.Tree, node wire.NodeID) wire.Tree {
	out := tree.Clone()
	if _, exists := out.Adjacency[node]; exists {
		return out
	}
	out.Adjacency[node] = nil
	existing := tree.Nodes()
	if len(existing) == 0 {
		return out
	}
	best := findBestNode(out, existing)
	connect(out, node, best)
	return out
}

// RemoveNode returns a copy of tree with node removed. Removing an
// internal node can split the tree into multiple components; those
// components are reconnected deterministically so the result is always a
// single spanning tree again.
func RemoveNode(tree wire.Tree, node wire.NodeID) wire.Tree {
	out := tree.Clone()
	neighbours := out.Adjacency[node]
	delete(out.Adjacency, node)
	for _, n := range neighbours {
		out.Adjacency[n] = removeID(out.Adjacency[n], node)
	}

	components := findConnectedComponents(out)
	for len(components) > 1 {
		reconnectOne(out, components)
		components = findConnectedComponents(out)
	}
	return out
}

// TowardsLowestID returns the neighbour of from that lies on the path
// towards the lowest-numbered node in the tree. If from is itself the
// lowest id, it is its own answer (the root of the tree it's the member
// with the lowest id that naturally acts as tie-break root).
func TowardsLowestID(tree wire.Tree, from wire.NodeID) wire.NodeID {
	nodes := tree.Nodes()
	if len(nodes) == 0 {
		return from
	}
	lowest := nodes[0]
	if lowest == from {
		return from
	}
	path := bfsPath(tree, from, lowest)
	if len(path) < 2 {
		return from
	}
	return path[1]
}

func connect(tree wire.Tree, a, b wire.NodeID) {
	tree.Adjacency[a] = append(tree.Adjacency[a], b)
	tree.Adjacency[b] = append(tree.Adjacency[b], a)
}

func removeID(ids []wire.NodeID, target wire.NodeID) []wire.NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func dedupSorted(members []wire.NodeID) []wire.NodeID {
	seen := make(map[wire.NodeID]bool, len(members))
	out := make([]wire.NodeID, 0, len(members))
	for _, m := range members {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findBestNode picks, among candidates, the node with the lowest
// connection cost: degree*2 plus its maximum DFS depth within the tree
// times 5. This keeps the tree both low-degree (fast to fan messages out
// through) and shallow (fast to propagate an update to the root),
// matching the cost function the tree was designed around.
func findBestNode(tree wire.Tree, candidates []wire.NodeID) wire.NodeID {
	best := candidates[0]
	bestCost := nodeCost(tree, best)
	for _, c := range candidates[1:] {
		cost := nodeCost(tree, c)
		if cost < bestCost || (cost == bestCost && c < best) {
			best = c
			bestCost = cost
		}
	}
	return best
}

func nodeCost(tree wire.Tree, node wire.NodeID) int {
	degree := len(tree.Adjacency[node])
	depth := maxDFSDepth(tree, node)
	return degree*2 + depth*5
}

func maxDFSDepth(tree wire.Tree, from wire.NodeID) int {
	visited := map[wire.NodeID]bool{from: true}
	var dfs func(wire.NodeID, int) int
	dfs = func(node wire.NodeID, depth int) int {
		max := depth
		for _, n := range tree.Adjacency[node] {
			if visited[n] {
				continue
			}
			visited[n] = true
			if d := dfs(n, depth+1); d > max {
				max = d
			}
		}
		return max
	}
	return dfs(from, 0)
}

func bfsPath(tree wire.Tree, from, to wire.NodeID) []wire.NodeID {
	if from == to {
		return []wire.NodeID{from}
	}
	prev := map[wire.NodeID]wire.NodeID{from: from}
	queue := []wire.NodeID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, n := range tree.Adjacency[cur] {
			if _, seen := prev[n]; !seen {
				prev[n] = cur
				queue = append(queue, n)
			}
		}
	}
	if _, ok := prev[to]; !ok {
		return nil
	}
	path := []wire.NodeID{to}
	for path[len(path)-1] != from {
		path = append(path, prev[path[len(path)-1]])
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func findConnectedComponents(tree wire.Tree) [][]wire.NodeID {
	visited := make(map[wire.NodeID]bool, len(tree.Adjacency))
	var components [][]wire.NodeID
	for _, start := range tree.Nodes() {
		if visited[start] {
			continue
		}
		var component []wire.NodeID
		queue := []wire.NodeID{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, n := range tree.Adjacency[cur] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// reconnectOne joins the first two components in components by the same
// lowest-cost heuristic used during construction, picking one candidate
// node from each side.
func reconnectOne(tree wire.Tree, components [][]wire.NodeID) {
	if len(components) < 2 {
		return
	}
	a := findBestNode(tree, components[0])
	b := findBestNode(tree, components[1])
	connect(tree, a, b)
}
