package service

import (
	"context"
	"testing"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
)

// seedDept 构造并写入测试部门
func seedDept(t *testing.T, repo *mockDeptRepository, id, code, parentID string, sort int) *model.Department {
	t.Helper()
	dept := &model.Department{
		Name:      code,
		Code:      code,
		ParentID:  parentID,
		SortOrder: sort,
		Status:    model.StatusActive,
	}
	dept.ID = id
	if err := repo.Create(context.Background(), dept); err != nil {
		t.Fatalf("写入测试部门失败: %v", err)
	}
	return dept
}

// TestDepartmentService_Create 测试部门创建
func TestDepartmentService_Create(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	dept := &model.Department{Name: "技术部", Code: "tech"}
	if err := svc.Create(ctx, dept); err != nil {
		t.Fatalf("创建部门失败: %v", err)
	}
	if dept.Status != model.StatusActive {
		t.Errorf("默认状态期望 active, 实际 %s", dept.Status)
	}

	// 名称与代码校验
	if err := svc.Create(ctx, &model.Department{Code: "x"}); err != ErrDeptNameEmpty {
		t.Errorf("期望 ErrDeptNameEmpty, 实际 %v", err)
	}
	if err := svc.Create(ctx, &model.Department{Name: "x"}); err != ErrDeptCodeEmpty {
		t.Errorf("期望 ErrDeptCodeEmpty, 实际 %v", err)
	}

	// 上级部门必须存在
	orphan := &model.Department{Name: "孤儿部门", Code: "orphan", ParentID: "missing"}
	if err := svc.Create(ctx, orphan); err != ErrDeptParentMissing {
		t.Errorf("期望 ErrDeptParentMissing, 实际 %v", err)
	}
}

// TestDepartmentService_Update 测试部门更新校验
func TestDepartmentService_Update(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	root := seedDept(t, repo, "d1", "root", "", 0)
	child := seedDept(t, repo, "d2", "child", "d1", 0)

	// 上级不能是自身
	self := *root
	self.ParentID = root.ID
	if err := svc.Update(ctx, &self); err != ErrDeptParentSelf {
		t.Errorf("期望 ErrDeptParentSelf, 实际 %v", err)
	}

	// 改派到不存在的上级
	moved := *child
	moved.ParentID = "missing"
	if err := svc.Update(ctx, &moved); err != ErrDeptParentMissing {
		t.Errorf("期望 ErrDeptParentMissing, 实际 %v", err)
	}

	// 正常更新
	renamed := *child
	renamed.Name = "子部门改名"
	if err := svc.Update(ctx, &renamed); err != nil {
		t.Errorf("更新部门失败: %v", err)
	}
}

// TestDepartmentService_Delete 测试部门删除
func TestDepartmentService_Delete(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	seedDept(t, repo, "d1", "root", "", 0)
	seedDept(t, repo, "d2", "child", "d1", 0)

	// 有下级部门时不可删除
	if err := svc.Delete(ctx, "d1"); err != repository.ErrDeptHasChildren {
		t.Errorf("期望 ErrDeptHasChildren, 实际 %v", err)
	}

	// 先删叶子再删根
	if err := svc.Delete(ctx, "d2"); err != nil {
		t.Fatalf("删除叶子部门失败: %v", err)
	}
	if err := svc.Delete(ctx, "d1"); err != nil {
		t.Fatalf("删除根部门失败: %v", err)
	}

	if err := svc.Delete(ctx, "d1"); err != repository.ErrDeptNotFound {
		t.Errorf("期望 ErrDeptNotFound, 实际 %v", err)
	}
}

// TestDepartmentService_GetTree 测试部门树组装
func TestDepartmentService_GetTree(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	seedDept(t, repo, "d1", "company", "", 0)
	seedDept(t, repo, "d2", "tech", "d1", 1)
	seedDept(t, repo, "d3", "hr", "d1", 0)
	seedDept(t, repo, "d4", "backend", "d2", 0)

	tree, err := svc.GetTree(ctx, "")
	if err != nil {
		t.Fatalf("获取部门树失败: %v", err)
	}

	if len(tree) != 1 {
		t.Fatalf("根部门数期望 1, 实际 %d", len(tree))
	}
	children := tree[0].Children
	if len(children) != 2 {
		t.Fatalf("一级子部门数期望 2, 实际 %d", len(children))
	}
	// 同级按 SortOrder 升序
	if children[0].Code != "hr" || children[1].Code != "tech" {
		t.Errorf("子部门排序错误: %s, %s", children[0].Code, children[1].Code)
	}
	if len(children[1].Children) != 1 || children[1].Children[0].Code != "backend" {
		t.Error("tech 下级部门缺失")
	}
}

// TestDepartmentService_GetFlatList 测试深度优先前序平铺
func TestDepartmentService_GetFlatList(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	seedDept(t, repo, "d1", "company", "", 0)
	seedDept(t, repo, "d2", "tech", "d1", 0)
	seedDept(t, repo, "d3", "backend", "d2", 0)
	seedDept(t, repo, "d4", "hr", "d1", 1)

	flat, err := svc.GetFlatList(ctx, "")
	if err != nil {
		t.Fatalf("获取平铺列表失败: %v", err)
	}

	want := []string{"company", "tech", "backend", "hr"}
	if len(flat) != len(want) {
		t.Fatalf("平铺节点数期望 %d, 实际 %d", len(want), len(flat))
	}
	for i, code := range want {
		if flat[i].Code != code {
			t.Errorf("位置 %d 期望 %s, 实际 %s", i, code, flat[i].Code)
		}
	}
}

// TestDepartmentService_GetTreeStatusFilter 测试按状态过滤后建树
func TestDepartmentService_GetTreeStatusFilter(t *testing.T) {
	repo := newMockDeptRepository()
	svc := NewDepartmentService(repo)
	ctx := context.Background()

	seedDept(t, repo, "d1", "company", "", 0)
	disabled := seedDept(t, repo, "d2", "closed", "d1", 0)
	disabled.Status = model.StatusDisabled

	tree, err := svc.GetTree(ctx, model.StatusActive)
	if err != nil {
		t.Fatalf("获取部门树失败: %v", err)
	}

	if len(tree) != 1 {
		t.Fatalf("根部门数期望 1, 实际 %d", len(tree))
	}
	if len(tree[0].Children) != 0 {
		t.Errorf("禁用部门应被过滤, 实际子部门数 %d", len(tree[0].Children))
	}
}
