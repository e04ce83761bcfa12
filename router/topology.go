package router

import "github.com/samber/lo"

var (
	// 线路绘制顺序
	LINE_ORDER = []string{"red", "yellow", "blue", "green", "violet", "orange", "magenta", "pink", "grey", "aqua"}
	// 线路颜色，未列出的线路由渲染方自行决定
	LINE_COLORS = map[string]string{
		"red":     "#e51d25",
		"yellow":  "#f3d325",
		"blue":    "#2c60a4",
		"green":   "#58a742",
		"violet":  "#6f3f98",
		"orange":  "#f58220",
		"magenta": "#e4007d",
		"pink":    "#FF69B4",
		"grey":    "#a4a6a9",
		"aqua":    "#00afad",
	}
)

// 供外部渲染使用的完整网络拓扑
type Topology struct {
	Stations   []StationRecord   `json:"stations"`
	Tracks     []Track           `json:"tracks"`
	Lines      []string          `json:"lines"`
	LineColors map[string]string `json:"line_colors"`
}

func (r *Router) Topology() *Topology {
	tracks := lo.Map(r.tracks, func(t *Track, _ int) Track {
		out := *t
		out.Lines = cloneLines(t.Lines)
		return out
	})
	// 先按LINE_ORDER，再按出现顺序补充其他线路
	present := make(map[string]bool)
	for _, st := range r.listing {
		for _, l := range st.Lines {
			present[l] = true
		}
	}
	lines := lo.Filter(LINE_ORDER, func(l string, _ int) bool { return present[l] })
	for _, st := range r.listing {
		for _, l := range st.Lines {
			if !lo.Contains(lines, l) {
				lines = append(lines, l)
			}
		}
	}
	colors := make(map[string]string, len(lines))
	for _, l := range lines {
		if c, ok := LINE_COLORS[l]; ok {
			colors[l] = c
		}
	}
	return &Topology{
		Stations:   r.Stations(),
		Tracks:     tracks,
		Lines:      lines,
		LineColors: colors,
	}
}
