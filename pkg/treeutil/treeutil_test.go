package treeutil

import "testing"

// item 测试用的树节点
type item struct {
	id       string
	parentID string
	sort     int
	children []*item
}

func (n *item) TreeID() string             { return n.id }
func (n *item) TreeParentID() string       { return n.parentID }
func (n *item) TreeSort() int              { return n.sort }
func (n *item) TreeChildren() []*item      { return n.children }
func (n *item) SetTreeChildren(cs []*item) { n.children = cs }

// TestToTree 测试平铺列表组装为树
func TestToTree(t *testing.T) {
	items := []*item{
		{id: "b", parentID: "", sort: 2},
		{id: "a", parentID: "", sort: 1},
		{id: "a1", parentID: "a", sort: 1},
		{id: "a2", parentID: "a", sort: 0},
		{id: "b1", parentID: "b", sort: 0},
	}

	roots := ToTree(items)

	if len(roots) != 2 {
		t.Fatalf("根节点数期望 2, 实际 %d", len(roots))
	}
	// 同级按 TreeSort 升序
	if roots[0].id != "a" || roots[1].id != "b" {
		t.Errorf("根节点排序错误: %s, %s", roots[0].id, roots[1].id)
	}
	if len(roots[0].children) != 2 {
		t.Fatalf("节点 a 子节点数期望 2, 实际 %d", len(roots[0].children))
	}
	if roots[0].children[0].id != "a2" || roots[0].children[1].id != "a1" {
		t.Errorf("子节点排序错误: %s, %s", roots[0].children[0].id, roots[0].children[1].id)
	}
}

// TestToTreeDanglingPromoted 测试悬挂节点提升为根
func TestToTreeDanglingPromoted(t *testing.T) {
	items := []*item{
		{id: "a", parentID: ""},
		{id: "x", parentID: "missing"},
	}

	roots := ToTree(items)

	if len(roots) != 2 {
		t.Fatalf("悬挂节点应提升为根, 根节点数期望 2, 实际 %d", len(roots))
	}
	found := false
	for _, r := range roots {
		if r.id == "x" {
			found = true
		}
	}
	if !found {
		t.Error("悬挂节点 x 未出现在根列表中")
	}
}

// TestToTreeSelfParent 测试父 ID 指向自身的节点提升为根
func TestToTreeSelfParent(t *testing.T) {
	items := []*item{
		{id: "a", parentID: "a"},
	}

	roots := ToTree(items)

	if len(roots) != 1 || roots[0].id != "a" {
		t.Fatalf("自引用节点应提升为根, 实际根数 %d", len(roots))
	}
	if len(roots[0].children) != 0 {
		t.Error("自引用节点不应有子节点")
	}
}

// TestToTreeCycle 测试互为父节点的环不进入结果树
func TestToTreeCycle(t *testing.T) {
	items := []*item{
		{id: "root", parentID: "", sort: 0},
		{id: "child", parentID: "root", sort: 0},
		// x 和 y 互为父节点，构成无法归根的环
		{id: "x", parentID: "y", sort: 0},
		{id: "y", parentID: "x", sort: 1},
	}

	roots := ToTree(items)

	// 环上的节点整体丢弃，正常子树不受影响
	if len(roots) != 1 || roots[0].id != "root" {
		t.Fatalf("环外根节点期望 1 个 root, 实际 %d 个", len(roots))
	}
	flat := Flatten(roots)
	for _, n := range flat {
		if n.id == "x" || n.id == "y" {
			t.Errorf("环上节点 %s 不应出现在结果树中", n.id)
		}
	}
	if len(flat) != 2 {
		t.Errorf("结果树节点数期望 2, 实际 %d", len(flat))
	}
}

// TestToTreeStableSort 测试排序值相同时保持输入顺序
func TestToTreeStableSort(t *testing.T) {
	items := []*item{
		{id: "first", parentID: "", sort: 0},
		{id: "second", parentID: "", sort: 0},
		{id: "third", parentID: "", sort: 0},
	}

	roots := ToTree(items)

	if roots[0].id != "first" || roots[1].id != "second" || roots[2].id != "third" {
		t.Errorf("相同排序值应保持输入顺序: %s, %s, %s", roots[0].id, roots[1].id, roots[2].id)
	}
}

// TestToTreeEmpty 测试空输入
func TestToTreeEmpty(t *testing.T) {
	roots := ToTree([]*item{})
	if len(roots) != 0 {
		t.Errorf("空输入期望空输出, 实际 %d 个根", len(roots))
	}
}

// TestFlatten 测试深度优先前序展开
func TestFlatten(t *testing.T) {
	items := []*item{
		{id: "a", parentID: "", sort: 0},
		{id: "b", parentID: "", sort: 1},
		{id: "a1", parentID: "a", sort: 0},
		{id: "a2", parentID: "a", sort: 1},
		{id: "a1x", parentID: "a1", sort: 0},
	}

	flat := Flatten(ToTree(items))

	want := []string{"a", "a1", "a1x", "a2", "b"}
	if len(flat) != len(want) {
		t.Fatalf("展开节点数期望 %d, 实际 %d", len(want), len(flat))
	}
	for i, id := range want {
		if flat[i].id != id {
			t.Errorf("位置 %d 期望 %s, 实际 %s", i, id, flat[i].id)
		}
	}
}

// TestFlattenRoundTrip 测试未重排时展开是输入的排列
func TestFlattenRoundTrip(t *testing.T) {
	items := []*item{
		{id: "a", parentID: "", sort: 0},
		{id: "a1", parentID: "a", sort: 0},
		{id: "b", parentID: "", sort: 1},
	}

	flat := Flatten(ToTree(items))

	if len(flat) != len(items) {
		t.Fatalf("展开应保留全部节点, 期望 %d, 实际 %d", len(items), len(flat))
	}
	seen := make(map[string]bool, len(flat))
	for _, n := range flat {
		seen[n.id] = true
	}
	for _, n := range items {
		if !seen[n.id] {
			t.Errorf("节点 %s 在展开结果中丢失", n.id)
		}
	}
}
