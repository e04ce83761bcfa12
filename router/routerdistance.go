package router

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/mathutil"
	"git.fiblab.net/sim/metro/router/algo"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type stationPair struct {
	U, V string
}

func newStationPair(u, v string) stationPair {
	if u > v {
		u, v = v, u
	}
	return stationPair{U: u, V: v}
}

// 两端车站标识的共同线路
func commonLines(u, v StationName) []string {
	return lo.Intersect(u.Lines, v.Lines)
}

func (r *Router) buildDistanceGraph(edges []parsedEdge) error {
	distanceGraph := algo.NewSearchGraph[*StationRecord, DistanceEdgeAttr]()
	for _, st := range r.listing {
		distanceGraph.InitNode(st)
	}
	// 合并重复的轨道，保持首次出现的顺序
	tracks := make([]*Track, 0, len(edges))
	trackLookup := make(map[stationPair]*Track)
	for _, e := range edges {
		ku, kv := e.u.Key(), e.v.Key()
		if ku == kv {
			log.Debugf("ignore self loop track %s - %s", e.u.Raw, e.v.Raw)
			continue
		}
		lines := commonLines(e.u, e.v)
		pair := newStationPair(ku, kv)
		if t, ok := trackLookup[pair]; ok {
			if math.Abs(t.DistanceKm-e.distanceKm) > DISTANCE_EPSILON {
				err := fmt.Errorf("%w: %s - %s has %v km and %v km",
					ErrInconsistentDistance, t.From, t.To, t.DistanceKm, e.distanceKm)
				log.WithError(err).Warnf("keep %v km", math.Min(t.DistanceKm, e.distanceKm))
			}
			t.DistanceKm = math.Min(t.DistanceKm, e.distanceKm)
			merged := lo.Uniq(append(t.Lines, lines...))
			sort.Strings(merged)
			t.Lines = merged
			continue
		}
		sort.Strings(lines)
		t := &Track{
			From:       r.stations[ku].Name,
			To:         r.stations[kv].Name,
			Lines:      lines,
			DistanceKm: e.distanceKm,
		}
		trackLookup[pair] = t
		tracks = append(tracks, t)
	}
	for _, t := range tracks {
		u, v := r.stations[stationKey(t.From)].Index-1, r.stations[stationKey(t.To)].Index-1
		attr := DistanceEdgeAttr{Lines: t.Lines}
		if err := distanceGraph.InitEdge(u, v, t.DistanceKm, attr); err != nil {
			return err
		}
		if err := distanceGraph.InitEdge(v, u, t.DistanceKm, attr); err != nil {
			return err
		}
	}
	r.tracks = tracks
	r.distanceGraph = distanceGraph
	return nil
}

// 网络应当连通，不连通视为数据问题，只给出警告
func (r *Router) checkConnectivity() {
	g := simple.NewUndirectedGraph()
	for _, st := range r.listing {
		g.AddNode(simple.Node(st.Index))
	}
	for _, t := range r.tracks {
		u, v := r.stations[stationKey(t.From)], r.stations[stationKey(t.To)]
		g.SetEdge(simple.Edge{F: simple.Node(u.Index), T: simple.Node(v.Index)})
	}
	cc := topo.ConnectedComponents(g)
	// 按最小序号排序，编号稳定
	for _, c := range cc {
		sort.Slice(c, func(i, j int) bool { return c[i].ID() < c[j].ID() })
	}
	sort.Slice(cc, func(i, j int) bool { return cc[i][0].ID() < cc[j][0].ID() })
	r.components = make(map[string]int, len(r.listing))
	for i, c := range cc {
		for _, n := range c {
			r.components[stationKey(r.listing[n.ID()-1].Name)] = i
		}
	}
	r.componentCount = len(cc)
	if len(cc) > 1 {
		log.Warnf("metro network is not connected: %d components", len(cc))
		for i, c := range cc {
			log.Debugf("component %d: %d stations, first %s", i, len(c), r.listing[c[0].ID()-1].Name)
		}
	}
}

func (r *Router) connected(u, v *StationRecord) bool {
	return r.components[stationKey(u.Name)] == r.components[stationKey(v.Name)]
}

func (r *Router) searchDistance(start, end *StationRecord) (*PathResult, error) {
	if !r.connected(start, end) {
		return nil, fmt.Errorf("%w: %s and %s are in different components", ErrNoPathFound, start.Name, end.Name)
	}
	pt, cost := r.distanceGraph.ShortestPath(start.Index-1, end.Index-1)
	if cost == mathutil.INF {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoPathFound, start.Name, end.Name)
	}
	return &PathResult{
		Mode: ModeDistance,
		Nodes: lo.Map(pt, func(item algo.PathItem[*StationRecord, DistanceEdgeAttr], _ int) Node {
			return Node{Station: item.NodeAttr.Name}
		}),
		TotalCost: cost,
	}, nil
}

// 相邻两站之间的距离（km）
func (r *Router) trackDistance(from, to string) (float64, []string, bool) {
	u, ok := r.stations[stationKey(from)]
	if !ok {
		return 0, nil, false
	}
	v, ok := r.stations[stationKey(to)]
	if !ok {
		return 0, nil, false
	}
	length, attr, ok := r.distanceGraph.GetEdge(u.Index-1, v.Index-1)
	return length, attr.Lines, ok
}
