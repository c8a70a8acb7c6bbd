package projection

import "sort"

// layoutLayered assigns left-to-right layered coordinates to a dependency
// graph: longest-path ranking, a barycenter ordering pass within each rank,
// then fixed-size placement. Back edges found during the cycle sweep are
// excluded from ranking so a cyclic registry still produces a usable layout.
type position struct {
	x, y float64
	rank int
}

func layoutLayered(ids []string, edges [][2]string) map[string]position {
	out := make(map[string]position, len(ids))
	if len(ids) == 0 {
		return out
	}

	succ := make(map[string][]string)
	pred := make(map[string][]string)
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	for _, e := range dropBackEdges(ids, edges) {
		if !known[e[0]] || !known[e[1]] {
			continue
		}
		succ[e[0]] = append(succ[e[0]], e[1])
		pred[e[1]] = append(pred[e[1]], e[0])
	}

	// Longest-path ranking via Kahn's algorithm over the acyclic edge set.
	rank := make(map[string]int, len(ids))
	indeg := make(map[string]int, len(ids))
	for _, id := range ids {
		indeg[id] = len(pred[id])
	}
	queue := []string{}
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if rank[id]+1 > rank[next] {
				rank[next] = rank[id] + 1
			}
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Group ids per rank, stable on registry order.
	maxRank := 0
	ranks := make(map[int][]string)
	for _, id := range ids {
		r := rank[id]
		ranks[r] = append(ranks[r], id)
		if r > maxRank {
			maxRank = r
		}
	}

	// One barycenter pass left to right: order each rank by the mean
	// position of its predecessors in the previous rank.
	slot := make(map[string]int, len(ids))
	for i, id := range ranks[0] {
		slot[id] = i
	}
	for r := 1; r <= maxRank; r++ {
		layer := ranks[r]
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			preds := pred[id]
			if len(preds) == 0 {
				bary[id] = float64(slot[id])
				continue
			}
			sum := 0.0
			for _, p := range preds {
				sum += float64(slot[p])
			}
			bary[id] = sum / float64(len(preds))
		}
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for i, id := range layer {
			slot[id] = i
		}
	}

	// Place: ranks flow left to right, each rank vertically centered.
	tallest := 0
	for r := 0; r <= maxRank; r++ {
		if len(ranks[r]) > tallest {
			tallest = len(ranks[r])
		}
	}
	totalHeight := float64(tallest*NodeHeight + (tallest-1)*NodeSep)
	for r := 0; r <= maxRank; r++ {
		layer := ranks[r]
		layerHeight := float64(len(layer)*NodeHeight + (len(layer)-1)*NodeSep)
		offset := (totalHeight - layerHeight) / 2
		for i, id := range layer {
			out[id] = position{
				x:    float64(r * (NodeWidth + RankSep)),
				y:    offset + float64(i*(NodeHeight+NodeSep)),
				rank: r,
			}
		}
	}
	return out
}

// dropBackEdges removes the edges that close a cycle, found by DFS in
// registry order.
func dropBackEdges(ids []string, edges [][2]string) [][2]string {
	succ := make(map[string][][2]string)
	for _, e := range edges {
		succ[e[0]] = append(succ[e[0]], e)
	}

	const (
		unvisited = 0
		inStack   = 1
		finished  = 2
	)
	state := make(map[string]int, len(ids))
	back := make(map[[2]string]bool)

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		for _, e := range succ[id] {
			switch state[e[1]] {
			case unvisited:
				visit(e[1])
			case inStack:
				back[e] = true
			}
		}
		state[id] = finished
	}
	for _, id := range ids {
		if state[id] == unvisited {
			visit(id)
		}
	}

	if len(back) == 0 {
		return edges
	}
	kept := make([][2]string, 0, len(edges))
	for _, e := range edges {
		if !back[e] {
			kept = append(kept, e)
		}
	}
	return kept
}
