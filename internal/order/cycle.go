package order

import "slices"

// constraintGraph maps an id to the ids it must precede.
type constraintGraph map[string][]string

// findCycles returns one closed path per cycle in the graph, e.g.
// ["a", "b", "a"] or ["a", "a"] for a self-pivot, and the sorted ids of
// every cycle member.
//
// Uses Tarjan's algorithm to find strongly connected components; an SCC is
// a cycle when it has more than one member or a self-loop. Output is
// deterministic: nodes are visited in sorted order and each path starts at
// the smallest id of its component.
func findCycles(graph constraintGraph) ([][]string, []string) {
	for node := range graph {
		slices.Sort(graph[node])
	}

	var (
		cycles  [][]string
		members []string
	)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			slices.Sort(scc)
			cycles = append(cycles, cyclePath(scc, graph))
			members = append(members, scc...)
		}
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	slices.Sort(members)
	return cycles, members
}

func hasSelfLoop(node string, graph constraintGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph constraintGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC: pop it
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cyclePath walks edges inside a sorted SCC from its first member back to
// itself.
func cyclePath(scc []string, graph constraintGraph) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		var next string
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
