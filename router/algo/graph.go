package algo

import (
	"container/heap"
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
)

type node[T any] struct {
	attr T
}

type edge[T any] struct {
	to   int
	v    float64
	attr T
}

// 无负权边的加权图，供Dijkstra搜索
// 构建完成后只读，多个goroutine可以并发搜索
type SearchGraph[NT any, ET any] struct {
	// 邻接表，按插入顺序保存，保证搜索结果稳定
	edges [][]edge[ET]
	// from -> to -> edges[from]中的下标
	lookup []map[int]int
	nodes  []node[NT]
}

func NewSearchGraph[NT any, ET any]() *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges:  make([][]edge[ET], 0),
		lookup: make([]map[int]int, 0),
		nodes:  make([]node[NT], 0),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(attr NT) int {
	g.nodes = append(g.nodes, node[NT]{attr: attr})
	g.edges = append(g.edges, make([]edge[ET], 0))
	g.lookup = append(g.lookup, make(map[int]int))
	return len(g.nodes) - 1
}

// 添加有向边，重复添加时覆盖原有的边权和属性
func (g *SearchGraph[NT, ET]) InitEdge(from, to int, length float64, attr ET) error {
	if from < 0 || from >= len(g.nodes) {
		return fmt.Errorf("%w: from %d (node count %d)", ErrNodeNotExist, from, len(g.nodes))
	}
	if to < 0 || to >= len(g.nodes) {
		return fmt.Errorf("%w: to %d (node count %d)", ErrNodeNotExist, to, len(g.nodes))
	}
	if length < 0 {
		return fmt.Errorf("%w: (%d,%d) %v", ErrNegativeWeight, from, to, length)
	}
	if i, ok := g.lookup[from][to]; ok {
		g.edges[from][i] = edge[ET]{to: to, v: length, attr: attr}
		return nil
	}
	g.lookup[from][to] = len(g.edges[from])
	g.edges[from] = append(g.edges[from], edge[ET]{to: to, v: length, attr: attr})
	return nil
}

func (g *SearchGraph[NT, ET]) GetEdge(from, to int) (float64, ET, bool) {
	var zero ET
	if from < 0 || from >= len(g.nodes) {
		return 0, zero, false
	}
	i, ok := g.lookup[from][to]
	if !ok {
		return 0, zero, false
	}
	e := g.edges[from][i]
	return e.v, e.attr, true
}

func (g *SearchGraph[NT, ET]) NodeAttr(id int) NT {
	return g.nodes[id].attr
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	return len(g.nodes)
}

func (g *SearchGraph[NT, ET]) EdgeCount() int {
	count := 0
	for _, es := range g.edges {
		count += len(es)
	}
	return count
}

// 遍历from的所有出边
func (g *SearchGraph[NT, ET]) Neighbors(from int, f func(to int, length float64, attr ET)) {
	for _, e := range g.edges[from] {
		f(e.to, e.v, e.attr)
	}
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, gScore map[int]float64, curNode int) []PathItem[NT, ET] {
	pathBeforeReversed := []PathItem[NT, ET]{{
		NodeID:   curNode,
		NodeAttr: g.nodes[curNode].attr,
		Cost:     gScore[curNode],
	}}
	for {
		from, ok := cameFrom[curNode]
		if !ok {
			break
		}
		_, attr, _ := g.GetEdge(from, curNode)
		pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
			NodeID:   from,
			NodeAttr: g.nodes[from].attr,
			EdgeAttr: attr,
			Cost:     gScore[from],
		})
		curNode = from
	}
	return lo.Reverse(pathBeforeReversed)
}

// 单源单汇最短路
func (g *SearchGraph[NT, ET]) ShortestPath(start, end int) ([]PathItem[NT, ET], float64) {
	return g.ShortestPathMulti([]int{start}, []int{end})
}

// 多源多汇Dijkstra
// 等价于增加一个虚拟源点以0权边连接所有starts、一个虚拟汇点以0权边连接所有ends
// 返回cost最小的一条路径；不可达时返回nil与INF
func (g *SearchGraph[NT, ET]) ShortestPathMulti(starts, ends []int) ([]PathItem[NT, ET], float64) {
	isEnd := make(map[int]bool, len(ends))
	for _, e := range ends {
		if e >= 0 && e < len(g.nodes) {
			isEnd[e] = true
		}
	}
	if len(isEnd) == 0 {
		return nil, mathutil.INF
	}
	openSet := make(PriorityQueue, 0, len(starts))
	openSetMap := make(map[int]*Item, len(starts)) // openSet value -> openSet item
	closed := make(map[int]bool)
	cameFrom := make(map[int]int)
	gScore := make(map[int]float64)
	for _, s := range starts {
		if s < 0 || s >= len(g.nodes) {
			continue
		}
		if _, ok := gScore[s]; ok {
			continue
		}
		gScore[s] = 0
		item := &Item{Value: s, Priority: 0, Index: len(openSet)}
		openSet = append(openSet, item)
		openSetMap[s] = item
	}
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		if isEnd[cur] {
			return g.reconstructPath(cameFrom, gScore, cur), gScore[cur]
		}
		closed[cur] = true
		for _, e := range g.edges[cur] {
			if closed[e.to] {
				continue
			}
			gScoreTentative := gScore[cur] + e.v
			gScoreNeighbor, ok := gScore[e.to]
			if !ok {
				gScoreNeighbor = mathutil.INF
			}
			if gScoreTentative < gScoreNeighbor {
				cameFrom[e.to] = cur
				gScore[e.to] = gScoreTentative
				if ok {
					// 已经在堆中的节点，修改其优先级
					openSetMap[e.to].Priority = gScoreTentative
					heap.Fix(&openSet, openSetMap[e.to].Index)
				} else {
					item := &Item{Value: e.to, Priority: gScoreTentative}
					heap.Push(&openSet, item)
					openSetMap[e.to] = item
				}
			}
		}
	}
	return nil, mathutil.INF
}
