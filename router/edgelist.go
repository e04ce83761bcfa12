package router

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var edgeListHeader = []string{"station_u", "station_v", "distance_km"}

// 读取边表CSV：station_u, station_v, distance_km
// 以#开头的行为注释，第一行可以是表头；其余格式错误的行直接返回错误
func ReadEdges(r io.Reader) ([]TrackEdge, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	edges := make([]TrackEdge, 0)
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)
		isFirst := first
		first = false
		if isFirst && isHeader(record) {
			continue
		}
		if len(record) != 3 {
			return nil, fmt.Errorf("%w: line %d: expect 3 columns, got %d", ErrMalformedRow, line, len(record))
		}
		u, v := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		distance, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid distance %q", ErrMalformedRow, line, record[2])
		}
		if distance <= 0 || math.IsInf(distance, 0) || math.IsNaN(distance) {
			return nil, fmt.Errorf("%w: line %d: distance must be positive, got %v", ErrMalformedRow, line, distance)
		}
		if _, err := ParseStation(u); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		if _, err := ParseStation(v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		edges = append(edges, TrackEdge{StationU: u, StationV: v, DistanceKm: distance})
	}
	return edges, nil
}

// 表头必须与edgeListHeader一致（大小写无关）
func isHeader(record []string) bool {
	if len(record) != len(edgeListHeader) {
		return false
	}
	for i, field := range record {
		if !strings.EqualFold(strings.TrimSpace(field), edgeListHeader[i]) {
			return false
		}
	}
	return true
}

func WriteEdges(w io.Writer, edges []TrackEdge) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(edgeListHeader); err != nil {
		return err
	}
	for _, e := range edges {
		if err := writer.Write([]string{
			e.StationU, e.StationV, strconv.FormatFloat(e.DistanceKm, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
