package router

import (
	"fmt"
	"strings"
)

// 搜索模式
type Mode int

const (
	// 总距离最短
	ModeDistance Mode = iota
	// 换乘次数最少
	ModeInterchange
)

func (m Mode) String() string {
	switch m {
	case ModeDistance:
		return "distance"
	case ModeInterchange:
		return "interchange"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance", "shortest", "1":
		return ModeDistance, nil
	case "interchange", "interchanges", "min-interchange", "2":
		return ModeInterchange, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeDistance && m != ModeInterchange {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// 边表中的一行，加载后不再修改
type TrackEdge struct {
	StationU   string  `json:"station_u" bson:"station_u"`
	StationV   string  `json:"station_v" bson:"station_v"`
	DistanceKm float64 `json:"distance_km" bson:"distance_km"`
}

type StationRecord struct {
	Index         int      `json:"index"` // 在排序后车站列表中的序号，从1开始
	Name          string   `json:"name"`
	Lines         []string `json:"lines"`
	IsInterchange bool     `json:"is_interchange"`
}

func (s *StationRecord) HasLine(line string) bool {
	for _, l := range s.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// 搜索图中的节点
// 距离图中Line为空；换乘图中节点为(车站, 线路)
type Node struct {
	Station string `json:"station"`
	Line    string `json:"line,omitempty"`
}

type LineChange struct {
	Station  string `json:"station"`
	FromLine string `json:"from_line"`
	ToLine   string `json:"to_line"`
}

type PathResult struct {
	Mode  Mode   `json:"mode"`
	Nodes []Node `json:"nodes"`
	// 距离模式为km，换乘模式为 站数*TRAVEL_COST + 换乘次数*INTERCHANGE_PENALTY，仅用于比较
	TotalCost   float64      `json:"total_cost"`
	LineChanges []LineChange `json:"line_changes"`
}

// 去掉连续重复后的车站序列
func (p *PathResult) Stations() []string {
	stations := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if len(stations) > 0 && stations[len(stations)-1] == n.Station {
			continue
		}
		stations = append(stations, n.Station)
	}
	return stations
}

// 两站之间的一段，Line为空表示没有共同线路（步行连接）
type Leg struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Line       string  `json:"line,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

type Step struct {
	Station string `json:"station"`
	Line    string `json:"line,omitempty"`
}

type Journey struct {
	ID           string       `json:"id,omitempty"`
	Mode         Mode         `json:"mode"`
	Start        string       `json:"start"`
	End          string       `json:"end"`
	Path         *PathResult  `json:"path"`
	Steps        []Step       `json:"steps"`
	Legs         []Leg        `json:"legs"`
	Directions   []Direction  `json:"directions"`
	LineChanges  []LineChange `json:"line_changes"`
	Interchanges int          `json:"interchanges"`
	DistanceKm   float64      `json:"distance_km"`
	Fare         int          `json:"fare"`
}

// 车站序列，供可视化高亮
func (j *Journey) Stations() []string {
	if j.Path == nil {
		return nil
	}
	return j.Path.Stations()
}
