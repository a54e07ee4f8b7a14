// Package treeutil 提供通用的平铺列表与树结构互转工具
// 部门层级、导航菜单等按 ParentID 组织的模型共用这一套转换
package treeutil

import "sort"

// Node 可组装为树的节点约束
// 实现方在模型上提供 ID、父 ID、排序与子节点访问方法
type Node[T any] interface {
	TreeID() string
	TreeParentID() string
	TreeSort() int
	TreeChildren() []T
	SetTreeChildren([]T)
}

// ToTree 将平铺列表组装为树，返回根节点列表
// 父 ID 为空的节点作为根；父 ID 指向不存在节点的悬挂节点提升为根，不丢弃
// （权限树构建采取相反的静默丢弃策略，两者差异是有意保留的）
// 互为父节点构成环的节点无法归根，整体不出现在结果树中
// 同级节点按 TreeSort 升序排列，排序值相同时保持输入顺序
func ToTree[T Node[T]](items []T) []T {
	index := make(map[string]T, len(items))
	for _, item := range items {
		item.SetTreeChildren(nil)
		index[item.TreeID()] = item
	}

	var roots []T
	for _, item := range items {
		pid := item.TreeParentID()
		if pid == "" {
			roots = append(roots, item)
			continue
		}
		parent, ok := index[pid]
		if !ok || parent.TreeID() == item.TreeID() {
			// 悬挂节点提升为根
			roots = append(roots, item)
			continue
		}
		parent.SetTreeChildren(append(parent.TreeChildren(), item))
	}

	sortSiblings(roots)
	return roots
}

// sortSiblings 递归按 TreeSort 稳定排序每一层
func sortSiblings[T Node[T]](nodes []T) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].TreeSort() < nodes[j].TreeSort()
	})
	for _, n := range nodes {
		if children := n.TreeChildren(); len(children) > 0 {
			sortSiblings(children)
		}
	}
}

// Flatten 深度优先前序展开树为平铺列表
// 若构建时未发生重排，Flatten(ToTree(L)) 是 L 的一个排列
func Flatten[T Node[T]](roots []T) []T {
	var result []T
	// 显式栈避免深层递归
	stack := make([]T, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, node)
		children := node.TreeChildren()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return result
}
