package router

import "errors"

const (
	// 同一线路相邻两站之间的cost
	TRAVEL_COST = 1
	// 换乘惩罚
	INTERCHANGE_PENALTY = 100
	// 重复轨道距离的容差（km）
	DISTANCE_EPSILON = 1e-6
)

var (
	// 错误：车站标识既不是name_line也不是name_(interchange ...)
	ErrMalformedStationName = errors.New("malformed station name")
	// 错误：边表中的行无法解析
	ErrMalformedRow = errors.New("malformed edge row")
	// 警告：同一对车站出现了不同的距离，取最小值
	ErrInconsistentDistance = errors.New("inconsistent distance")
	// 错误：查询的车站不存在
	ErrUnknownStation = errors.New("unknown station")
	// 错误：两个车站之间不连通
	ErrNoPathFound = errors.New("no path found")
	// 错误：票价表无法覆盖该距离
	ErrDistanceOutOfRange = errors.New("distance out of range")
	// 错误：未知的搜索模式
	ErrUnknownMode = errors.New("unknown mode")
)
