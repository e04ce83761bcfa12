package router

import (
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/mathutil"
	"git.fiblab.net/sim/metro/router/algo"
	"github.com/samber/lo"
)

func (r *Router) buildInterchangeGraph(edges []parsedEdge) error {
	interchangeGraph := algo.NewSearchGraph[Node, InterchangeEdgeAttr]()
	nodeIds := make(map[Node]int)
	for _, st := range r.listing {
		for _, line := range st.Lines {
			n := Node{Station: st.Name, Line: line}
			nodeIds[n] = interchangeGraph.InitNode(n)
		}
	}
	addUndirected := func(u, v Node, length float64, attr InterchangeEdgeAttr) error {
		uid, ok := nodeIds[u]
		if !ok {
			return fmt.Errorf("interchange node %v not found", u)
		}
		vid, ok := nodeIds[v]
		if !ok {
			return fmt.Errorf("interchange node %v not found", v)
		}
		if err := interchangeGraph.InitEdge(uid, vid, length, attr); err != nil {
			return err
		}
		return interchangeGraph.InitEdge(vid, uid, length, attr)
	}
	// 换乘边：车站内任意两条线路两两相连
	transferCount := 0
	for _, st := range r.listing {
		for i := 0; i < len(st.Lines); i++ {
			for j := i + 1; j < len(st.Lines); j++ {
				if err := addUndirected(
					Node{Station: st.Name, Line: st.Lines[i]},
					Node{Station: st.Name, Line: st.Lines[j]},
					INTERCHANGE_PENALTY,
					InterchangeEdgeAttr{Transfer: true},
				); err != nil {
					return err
				}
				transferCount++
			}
		}
	}
	// 行驶边：两端车站标识共有的每条线路
	for _, e := range edges {
		u, v := r.stations[e.u.Key()], r.stations[e.v.Key()]
		if u == v {
			continue
		}
		lines := commonLines(e.u, e.v)
		sort.Strings(lines)
		for _, line := range lines {
			if err := addUndirected(
				Node{Station: u.Name, Line: line},
				Node{Station: v.Name, Line: line},
				TRAVEL_COST,
				InterchangeEdgeAttr{Transfer: false},
			); err != nil {
				return err
			}
		}
	}
	log.Debugf("interchange graph: %d nodes, %d directed edges, %d transfer pairs",
		interchangeGraph.NodeCount(), interchangeGraph.EdgeCount(), transferCount)
	r.interchangeGraph = interchangeGraph
	r.interchangeNodeIds = nodeIds
	return nil
}

// 车站在换乘图中的所有节点
func (r *Router) interchangeNodes(st *StationRecord) []int {
	return lo.FilterMap(st.Lines, func(line string, _ int) (int, bool) {
		id, ok := r.interchangeNodeIds[Node{Station: st.Name, Line: line}]
		return id, ok
	})
}

// 起点和终点可以选择任一线路，多源多汇搜索一次得到最优解
func (r *Router) searchInterchange(start, end *StationRecord) (*PathResult, error) {
	pt, cost := r.interchangeGraph.ShortestPathMulti(r.interchangeNodes(start), r.interchangeNodes(end))
	if cost == mathutil.INF {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoPathFound, start.Name, end.Name)
	}
	return &PathResult{
		Mode: ModeInterchange,
		Nodes: lo.Map(pt, func(item algo.PathItem[Node, InterchangeEdgeAttr], _ int) Node {
			return item.NodeAttr
		}),
		TotalCost: cost,
	}, nil
}

// 换乘图中某站某线路的节点是否存在
func (r *Router) HasLineNode(station, line string) bool {
	st, ok := r.stations[stationKey(station)]
	if !ok {
		return false
	}
	_, ok = r.interchangeNodeIds[Node{Station: st.Name, Line: line}]
	return ok
}

// 换乘图中某站的换乘边数量，全连接时为C(k,2)
func (r *Router) TransferEdges(station string) int {
	st, ok := r.stations[stationKey(station)]
	if !ok {
		return 0
	}
	count := 0
	for _, id := range r.interchangeNodes(st) {
		r.interchangeGraph.Neighbors(id, func(_ int, _ float64, attr InterchangeEdgeAttr) {
			if attr.Transfer {
				count++
			}
		})
	}
	// 无向边被存了两次
	return count / 2
}
