// Package service 业务逻辑层
package service

import (
	"errors"
	"sort"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
)

// ErrCycleDetected 权限目录中存在父子引用环
var ErrCycleDetected = errors.New("权限树存在循环引用")

// PermTreeOptions 权限树构建选项
type PermTreeOptions struct {
	RootParentID string // 作为根的父 ID，默认空串
	Type         string // 非空时先按节点类型过滤再建树
}

// BuildPermissionTree 将平铺权限列表组装为树，返回根节点列表
//
// 与 treeutil.ToTree 不同，悬挂节点（父 ID 非根且不在输入范围内）被静默丢弃：
// 用户看不到祖先的权限节点不应浮现为根。按类型过滤时父节点类型不同的子节点
// 因此会被排除，调用方需要保证过滤范围包含完整祖先链。
//
// 父子引用成环时返回 ErrCycleDetected，绝不无限循环。
// 同级节点按 SortOrder 升序排列。纯函数，不修改输入列表顺序。
func BuildPermissionTree(nodes []*model.PermissionNode, opts PermTreeOptions) ([]*model.PermissionNode, error) {
	filtered := nodes
	if opts.Type != "" {
		filtered = make([]*model.PermissionNode, 0, len(nodes))
		for _, n := range nodes {
			if n.Type == opts.Type {
				filtered = append(filtered, n)
			}
		}
	}

	// id -> 节点索引，子节点列表清空后重建
	index := make(map[string]*model.PermissionNode, len(filtered))
	for _, n := range filtered {
		n.Children = nil
		index[n.ID] = n
	}

	// 逐节点沿父链走访，访问集防环
	for _, n := range filtered {
		visited := map[string]bool{n.ID: true}
		cur := n
		for cur.ParentID != opts.RootParentID {
			parent, ok := index[cur.ParentID]
			if !ok {
				break
			}
			if visited[parent.ID] {
				return nil, ErrCycleDetected
			}
			visited[parent.ID] = true
			cur = parent
		}
	}

	var roots []*model.PermissionNode
	for _, n := range filtered {
		if n.ParentID == opts.RootParentID {
			roots = append(roots, n)
			continue
		}
		if parent, ok := index[n.ParentID]; ok {
			parent.Children = append(parent.Children, n)
		}
		// 父节点不在范围内的节点静默丢弃
	}

	sortPermSiblings(roots)
	return roots, nil
}

// sortPermSiblings 递归按 SortOrder 稳定排序每一层
func sortPermSiblings(nodes []*model.PermissionNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].SortOrder < nodes[j].SortOrder
	})
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortPermSiblings(n.Children)
		}
	}
}
