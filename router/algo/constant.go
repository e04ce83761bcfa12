package algo

import "errors"

var (
	// 错误：节点不存在
	ErrNodeNotExist = errors.New("node not exists")
	// 错误：边权为负，Dijkstra不适用
	ErrNegativeWeight = errors.New("negative edge weight")
)
