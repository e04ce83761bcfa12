package router

import (
	"fmt"

	"github.com/samber/lo"
)

type DirectionKind string

const (
	DirectionRide   DirectionKind = "ride"
	DirectionWalk   DirectionKind = "walk"
	DirectionChange DirectionKind = "change"
)

// 一条路线说明：乘坐某线路从From到To，或在Station从FromLine换乘ToLine
type Direction struct {
	Kind       DirectionKind `json:"kind"`
	Line       string        `json:"line,omitempty"`
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Stops      int           `json:"stops,omitempty"`
	DistanceKm float64       `json:"distance_km,omitempty"`
	Station    string        `json:"station,omitempty"`
	FromLine   string        `json:"from_line,omitempty"`
	ToLine     string        `json:"to_line,omitempty"`
}

func (d Direction) Text() string {
	switch d.Kind {
	case DirectionRide:
		stops := "stops"
		if d.Stops == 1 {
			stops = "stop"
		}
		return fmt.Sprintf("Ride the %s line from %s to %s (%d %s, %.2f km)",
			lineTitle(d.Line), d.From, d.To, d.Stops, stops, d.DistanceKm)
	case DirectionWalk:
		return fmt.Sprintf("Walk from %s to %s (%.2f km)", d.From, d.To, d.DistanceKm)
	case DirectionChange:
		return fmt.Sprintf("Change at %s from the %s line to the %s line",
			d.Station, lineTitle(d.FromLine), lineTitle(d.ToLine))
	default:
		return string(d.Kind)
	}
}

// 将路径转换为相邻两站之间的段，距离取自距离图
func (r *Router) legs(p *PathResult) ([]Leg, error) {
	stations := p.Stations()
	legs := make([]Leg, 0, len(stations))
	candidates := make([][]string, 0, len(stations))
	for i := 0; i+1 < len(stations); i++ {
		km, lines, ok := r.trackDistance(stations[i], stations[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: no track between %s and %s", ErrNoPathFound, stations[i], stations[i+1])
		}
		legs = append(legs, Leg{From: stations[i], To: stations[i+1], DistanceKm: km})
		candidates = append(candidates, lines)
	}
	switch p.Mode {
	case ModeInterchange:
		// 节点自带线路：离开某站时所在的线路即该段的线路
		leg := 0
		for i := 0; i+1 < len(p.Nodes); i++ {
			if p.Nodes[i].Station == p.Nodes[i+1].Station {
				continue
			}
			legs[leg].Line = p.Nodes[i].Line
			leg++
		}
	default:
		chooseLines(legs, candidates)
	}
	return legs, nil
}

// 距离模式下为每一段选择线路：优先沿用当前线路，否则选择能连续乘坐最远的线路
func chooseLines(legs []Leg, candidates [][]string) {
	current := ""
	for i := range legs {
		lines := candidates[i]
		switch {
		case len(lines) == 0:
			current = ""
		case current != "" && lo.Contains(lines, current):
		default:
			best, bestRun := lines[0], 0
			for _, line := range lines {
				run := 0
				for j := i; j < len(candidates) && lo.Contains(candidates[j], line); j++ {
					run++
				}
				if run > bestRun {
					best, bestRun = line, run
				}
			}
			current = best
		}
		legs[i].Line = current
	}
}

func lineChanges(legs []Leg) []LineChange {
	changes := make([]LineChange, 0)
	for i := 0; i+1 < len(legs); i++ {
		a, b := legs[i].Line, legs[i+1].Line
		if a != "" && b != "" && a != b {
			changes = append(changes, LineChange{Station: legs[i].To, FromLine: a, ToLine: b})
		}
	}
	return changes
}

// 连续同一线路的段合并为一条乘车说明，线路变化处插入换乘说明
func directions(legs []Leg) []Direction {
	out := make([]Direction, 0)
	for i := 0; i < len(legs); {
		j := i
		d := Direction{Line: legs[i].Line, From: legs[i].From}
		for ; j < len(legs) && legs[j].Line == legs[i].Line; j++ {
			d.DistanceKm += legs[j].DistanceKm
			d.Stops++
		}
		d.To = legs[j-1].To
		if d.Line == "" {
			d.Kind = DirectionWalk
		} else {
			d.Kind = DirectionRide
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Kind == DirectionRide && d.Kind == DirectionRide {
				out = append(out, Direction{
					Kind:     DirectionChange,
					Station:  d.From,
					FromLine: prev.Line,
					ToLine:   d.Line,
				})
			}
		}
		out = append(out, d)
		i = j
	}
	return out
}

// 路径 -> 路线说明、真实距离与票价
// 不论路径来自哪种模式，距离都按距离图的边权重新累加
func (r *Router) Interpret(p *PathResult) (*Journey, error) {
	if p == nil || len(p.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrNoPathFound)
	}
	legs, err := r.legs(p)
	if err != nil {
		return nil, err
	}
	distance := 0.0
	for _, leg := range legs {
		distance += leg.DistanceKm
	}
	fare, err := r.fares.Fare(distance)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(legs)+1)
	for _, leg := range legs {
		steps = append(steps, Step{Station: leg.From, Line: leg.Line})
	}
	if len(legs) > 0 {
		last := legs[len(legs)-1]
		steps = append(steps, Step{Station: last.To, Line: last.Line})
	} else {
		steps = append(steps, Step{Station: p.Nodes[0].Station, Line: p.Nodes[0].Line})
	}
	changes := lineChanges(legs)
	return &Journey{
		Mode:         p.Mode,
		Start:        p.Nodes[0].Station,
		End:          p.Nodes[len(p.Nodes)-1].Station,
		Path:         p,
		Steps:        steps,
		Legs:         legs,
		Directions:   directions(legs),
		LineChanges:  changes,
		Interchanges: len(changes),
		DistanceKm:   distance,
		Fare:         fare,
	}, nil
}
