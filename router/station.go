package router

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// name_(interchange line1 line2 ...)
	interchangeNameRe = regexp.MustCompile(`^(.+?)_\(\s*(?i:interchange)((?:\s+[^\s()]+)+)\s*\)$`)
	// name_line，line为最后一个下划线之后的部分
	regularNameRe = regexp.MustCompile(`^(.+)_([^_\s()]+)$`)
)

// 车站标识的解析结果
type StationName struct {
	Raw           string
	Name          string   // 显示名称
	Lines         []string // 小写、去重、排序
	IsInterchange bool     // 是否为interchange写法
}

// 车站的唯一标识，大小写无关
func (s StationName) Key() string {
	return stationKey(s.Name)
}

func ParseStation(raw string) (StationName, error) {
	trimmed := strings.TrimSpace(raw)
	var namePart string
	var lines []string
	isInterchange := false
	if m := interchangeNameRe.FindStringSubmatch(trimmed); m != nil {
		namePart = m[1]
		lines = strings.Fields(m[2])
		isInterchange = true
	} else if m := regularNameRe.FindStringSubmatch(trimmed); m != nil {
		namePart = m[1]
		lines = []string{m[2]}
	} else {
		return StationName{}, fmt.Errorf("%w: %q", ErrMalformedStationName, raw)
	}
	name := DisplayName(namePart)
	if name == "" {
		return StationName{}, fmt.Errorf("%w: empty name in %q", ErrMalformedStationName, raw)
	}
	lines = lo.Uniq(lo.Map(lines, func(l string, _ int) string {
		return strings.ToLower(l)
	}))
	sort.Strings(lines)
	return StationName{
		Raw:           raw,
		Name:          name,
		Lines:         lines,
		IsInterchange: isInterchange,
	}, nil
}

// 下划线与连续空白替换为单个空格，每个单词首字母大写
func DisplayName(s string) string {
	joined := strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	// Caser有状态，不能在goroutine间共享
	return cases.Title(language.English).String(joined)
}

func stationKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))
}

func lineTitle(line string) string {
	return cases.Title(language.English).String(line)
}
