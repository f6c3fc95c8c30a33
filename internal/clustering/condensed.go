package clustering

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// minDistance bounds lambda = 1/distance for duplicate points.
const minDistance = 1e-12

// mutualReachability returns max(d(a,b), core(a), core(b)) for every pair,
// where core(p) is the distance to the minPoints-th nearest point counting p
// itself.
func mutualReachability(vectors [][]float64, minPoints int, distance DistanceFunc) *mat.SymDense {
	n := len(vectors)
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist.SetSym(i, j, distance(vectors[i], vectors[j]))
		}
	}

	k := min(minPoints, n)
	coreDist := make([]float64, n)
	row := make([]float64, n)
	for i := range coreDist {
		mat.Row(row, i, dist)
		sort.Float64s(row)
		coreDist[i] = row[k-1]
	}

	reach := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			reach.SetSym(i, j, max(dist.At(i, j), coreDist[i], coreDist[j]))
		}
	}
	return reach
}

type mstEdge struct {
	a, b   int
	weight float64
}

// minimumSpanningTree runs Prim over the complete reachability graph and
// returns the tree edges by ascending weight, ties broken by point index.
func minimumSpanningTree(reach *mat.SymDense) []mstEdge {
	n := reach.SymmetricDim()
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), reach.At(i, j)))
		}
	}

	tree := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Prim(tree, g)

	var edges []mstEdge
	for _, e := range graph.WeightedEdgesOf(tree.WeightedEdges()) {
		a, b := int(e.From().ID()), int(e.To().ID())
		if a > b {
			a, b = b, a
		}
		edges = append(edges, mstEdge{a: a, b: b, weight: e.Weight()})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].weight != edges[j].weight {
			return edges[i].weight < edges[j].weight
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})
	return edges
}

// linkageNode merges two nodes of the single-linkage hierarchy. Ids below n
// are points; id n+i is the i-th merge.
type linkageNode struct {
	left, right int
	distance    float64
	size        int
}

func singleLinkage(n int, edges []mstEdge) []linkageNode {
	parent := make([]int, 2*n-1)
	size := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
		if i < n {
			size[i] = 1
		}
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	links := make([]linkageNode, 0, n-1)
	for _, e := range edges {
		ra, rb := find(e.a), find(e.b)
		if ra == rb {
			continue
		}
		id := n + len(links)
		parent[ra], parent[rb] = id, id
		size[id] = size[ra] + size[rb]
		links = append(links, linkageNode{left: ra, right: rb, distance: e.weight, size: size[id]})
	}
	return links
}

// condensedTree is the single-linkage hierarchy reduced to clusters of at
// least minClusterSize points. Cluster 0 is the root and every cluster id is
// larger than its parent's.
type condensedTree struct {
	n         int
	links     []linkageNode
	minSize   int
	parent    []int
	birth     []float64
	stability []float64
	// cluster each point falls out of
	pointCluster []int
}

func condense(links []linkageNode, n, minClusterSize int) *condensedTree {
	t := &condensedTree{
		n:            n,
		links:        links,
		minSize:      minClusterSize,
		pointCluster: make([]int, n),
	}
	root := t.newCluster(-1, 0)
	if len(links) > 0 {
		t.descend(n+len(links)-1, root)
	}
	return t
}

func (t *condensedTree) newCluster(parent int, birth float64) int {
	t.parent = append(t.parent, parent)
	t.birth = append(t.birth, birth)
	t.stability = append(t.stability, 0)
	return len(t.parent) - 1
}

func (t *condensedTree) sizeOf(node int) int {
	if node < t.n {
		return 1
	}
	return t.links[node-t.n].size
}

func lambdaOf(distance float64) float64 {
	return 1 / math.Max(distance, minDistance)
}

// descend splits the hierarchy below node, which belongs to cluster c.
func (t *condensedTree) descend(node, c int) {
	for node >= t.n {
		l := t.links[node-t.n]
		lambda := lambdaOf(l.distance)
		ls, rs := t.sizeOf(l.left), t.sizeOf(l.right)

		switch {
		case ls >= t.minSize && rs >= t.minSize:
			t.stability[c] += (lambda - t.birth[c]) * float64(ls+rs)
			for _, child := range []int{l.left, l.right} {
				t.descend(child, t.newCluster(c, lambda))
			}
			return
		case ls >= t.minSize:
			t.dropPoints(l.right, c, lambda)
			node = l.left
		case rs >= t.minSize:
			t.dropPoints(l.left, c, lambda)
			node = l.right
		default:
			t.dropPoints(l.left, c, lambda)
			t.dropPoints(l.right, c, lambda)
			return
		}
	}
}

// dropPoints records every point below node as leaving cluster c at lambda.
func (t *condensedTree) dropPoints(node, c int, lambda float64) {
	stack := []int{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top >= t.n {
			l := t.links[top-t.n]
			stack = append(stack, l.left, l.right)
			continue
		}
		t.pointCluster[top] = c
		t.stability[c] += lambda - t.birth[c]
	}
}

// selectClusters picks the flat clustering with the largest total stability
// (excess of mass). The root is never selected; a cluster wins ties against
// its descendants.
func (t *condensedTree) selectClusters() []bool {
	k := len(t.parent)
	selected := make([]bool, k)
	childSum := make([]float64, k)
	hasChildren := make([]bool, k)

	for c := k - 1; c >= 1; c-- {
		best := t.stability[c]
		if !hasChildren[c] || t.stability[c] >= childSum[c] {
			selected[c] = true
		} else {
			best = childSum[c]
		}
		p := t.parent[c]
		childSum[p] += best
		hasChildren[p] = true
	}

	covered := make([]bool, k)
	for c := 1; c < k; c++ {
		p := t.parent[c]
		if p > 0 && (selected[p] || covered[p]) {
			covered[c] = true
			selected[c] = false
		}
	}
	return selected
}

// members lists the points of every selected cluster. A point belongs to the
// selected cluster above the cluster it fell out of; points with none are
// noise.
func (t *condensedTree) members(selected []bool) []clusterData {
	points := make([][]int, len(t.parent))
	for p := 0; p < t.n; p++ {
		for c := t.pointCluster[p]; c > 0; c = t.parent[c] {
			if selected[c] {
				points[c] = append(points[c], p)
				break
			}
		}
	}

	var out []clusterData
	for _, pts := range points {
		if len(pts) > 0 {
			out = append(out, clusterData{Points: pts})
		}
	}
	return out
}
