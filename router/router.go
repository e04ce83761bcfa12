package router

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"git.fiblab.net/sim/metro/router/algo"
	"github.com/samber/lo"
)

// 距离图的边属性：该段轨道所属的线路（两端车站标识的共同线路）
type DistanceEdgeAttr struct {
	Lines []string
}

// 换乘图的边属性
type InterchangeEdgeAttr struct {
	Transfer bool // true为同站换乘边，false为同线路行驶边
}

// 去重后的一段轨道
type Track struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Lines      []string `json:"lines"`
	DistanceKm float64  `json:"distance_km"`
}

type Option func(*Router)

func WithFareTable(fares *FareTable) Option {
	return func(r *Router) {
		if fares != nil {
			r.fares = fares
		}
	}
}

// Router 持有由边表一次性构建的只读数据，可被多个goroutine并发查询
type Router struct {
	// key -> station
	stations map[string]*StationRecord
	// 按key排序的车站列表，Index从1开始
	listing []*StationRecord
	tracks  []*Track
	fares   *FareTable

	// distanceGraph Topo
	// 1. 点为车站，id与listing下标一致
	// 2. 边为无向轨道，边权为距离（km），重复的轨道取最小值
	distanceGraph *algo.SearchGraph[*StationRecord, DistanceEdgeAttr]
	// interchangeGraph Topo
	// 1. 点为(车站, 线路)
	// 2. 边有两类：
	//    - 行驶边：同一线路相邻两站，边权TRAVEL_COST
	//    - 换乘边：同一车站的任意两条线路之间，边权INTERCHANGE_PENALTY
	interchangeGraph   *algo.SearchGraph[Node, InterchangeEdgeAttr]
	interchangeNodeIds map[Node]int
	// 距离图的连通分量编号
	components map[string]int
	// 连通分量数量
	componentCount int
}

type parsedEdge struct {
	u, v       StationName
	distanceKm float64
}

func New(edges []TrackEdge, opts ...Option) (*Router, error) {
	r := &Router{
		stations: make(map[string]*StationRecord),
		fares:    DefaultFareTable(),
	}
	for _, opt := range opts {
		opt(r)
	}
	parsed := make([]parsedEdge, 0, len(edges))
	for i, e := range edges {
		if e.DistanceKm <= 0 || math.IsInf(e.DistanceKm, 0) || math.IsNaN(e.DistanceKm) {
			return nil, fmt.Errorf("%w: edge %d (%s, %s): distance must be positive, got %v",
				ErrMalformedRow, i+1, e.StationU, e.StationV, e.DistanceKm)
		}
		u, err := ParseStation(e.StationU)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i+1, err)
		}
		v, err := ParseStation(e.StationV)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i+1, err)
		}
		r.mergeStation(u)
		r.mergeStation(v)
		parsed = append(parsed, parsedEdge{u: u, v: v, distanceKm: e.DistanceKm})
	}
	r.buildListing()
	if err := r.buildDistanceGraph(parsed); err != nil {
		return nil, err
	}
	if err := r.buildInterchangeGraph(parsed); err != nil {
		return nil, err
	}
	r.checkConnectivity()
	log.Infof("metro network loaded: %d stations, %d tracks, %d interchange nodes, %d components",
		len(r.listing), len(r.tracks), r.interchangeGraph.NodeCount(), r.componentCount)
	return r, nil
}

// 同名车站合并线路集合
func (r *Router) mergeStation(s StationName) {
	key := s.Key()
	if st, ok := r.stations[key]; ok {
		lines := lo.Uniq(append(st.Lines, s.Lines...))
		sort.Strings(lines)
		st.Lines = lines
		st.IsInterchange = len(lines) > 1
		return
	}
	r.stations[key] = &StationRecord{
		Name:          s.Name,
		Lines:         append([]string(nil), s.Lines...),
		IsInterchange: len(s.Lines) > 1,
	}
}

func (r *Router) buildListing() {
	keys := lo.Keys(r.stations)
	sort.Strings(keys)
	r.listing = make([]*StationRecord, len(keys))
	for i, key := range keys {
		st := r.stations[key]
		st.Index = i + 1
		r.listing[i] = st
	}
}

// getter

func (r *Router) Stations() []StationRecord {
	return lo.Map(r.listing, func(st *StationRecord, _ int) StationRecord {
		out := *st
		out.Lines = cloneLines(st.Lines)
		return out
	})
}

func (r *Router) FareTable() *FareTable {
	return r.fares
}

func (r *Router) Components() int {
	return r.componentCount
}

func (r *Router) HasStation(name string) bool {
	_, ok := r.stations[stationKey(name)]
	return ok
}

// 将查询输入转换为车站：精确的车站名（大小写无关）或排序列表中的序号（从1开始）
func (r *Router) Resolve(ref string) (*StationRecord, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty station", ErrUnknownStation)
	}
	if st, ok := r.stations[stationKey(trimmed)]; ok {
		return st, nil
	}
	if index, err := strconv.Atoi(trimmed); err == nil {
		if index < 1 || index > len(r.listing) {
			return nil, fmt.Errorf("%w: index %d out of range [1,%d]", ErrUnknownStation, index, len(r.listing))
		}
		return r.listing[index-1], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStation, ref)
}

func (r *Router) FindPath(startRef, endRef string, mode Mode) (*PathResult, error) {
	start, err := r.Resolve(startRef)
	if err != nil {
		return nil, err
	}
	end, err := r.Resolve(endRef)
	if err != nil {
		return nil, err
	}
	var p *PathResult
	switch mode {
	case ModeDistance:
		p, err = r.searchDistance(start, end)
	case ModeInterchange:
		p, err = r.searchInterchange(start, end)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if err != nil {
		return nil, err
	}
	legs, err := r.legs(p)
	if err != nil {
		return nil, err
	}
	p.LineChanges = lineChanges(legs)
	return p, nil
}

// 查询入口：寻路、生成路线说明并计算票价
func (r *Router) Route(startRef, endRef string, mode Mode) (*Journey, error) {
	p, err := r.FindPath(startRef, endRef, mode)
	if err != nil {
		return nil, err
	}
	return r.Interpret(p)
}

func cloneLines(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// close
func (r *Router) Close() {}
