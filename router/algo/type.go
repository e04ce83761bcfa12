package algo

// 路径上的一项：节点属性与从该节点出发到下一节点的边属性
// 终点没有出边，EdgeAttr为零值
type PathItem[NT any, ET any] struct {
	NodeID   int
	NodeAttr NT
	EdgeAttr ET
	Cost     float64 // 从起点到该节点的累计cost
}
