package service

import (
	"context"
	"errors"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/treeutil"
)

// 部门相关错误
var (
	ErrDeptNameEmpty     = errors.New("部门名称不能为空")
	ErrDeptCodeEmpty     = errors.New("部门代码不能为空")
	ErrDeptParentMissing = errors.New("上级部门不存在")
	ErrDeptParentSelf    = errors.New("上级部门不能是自身")
)

// DepartmentService 部门服务接口
type DepartmentService interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string) error
	// GetTree 返回部门层级树，status 非空时先过滤再组装
	GetTree(ctx context.Context, status string) ([]*model.Department, error)
	// GetFlatList 返回树的深度优先前序平铺，供下拉选择等场景使用
	GetFlatList(ctx context.Context, status string) ([]*model.Department, error)
}

type departmentService struct {
	deptRepo repository.DepartmentRepository
}

// NewDepartmentService 创建部门服务
func NewDepartmentService(deptRepo repository.DepartmentRepository) DepartmentService {
	return &departmentService{deptRepo: deptRepo}
}

func (s *departmentService) Create(ctx context.Context, dept *model.Department) error {
	if dept.Name == "" {
		return ErrDeptNameEmpty
	}
	if dept.Code == "" {
		return ErrDeptCodeEmpty
	}
	if dept.ParentID != "" {
		if _, err := s.deptRepo.GetByID(ctx, dept.ParentID); err != nil {
			return ErrDeptParentMissing
		}
	}
	if dept.Status == "" {
		dept.Status = model.StatusActive
	}
	return s.deptRepo.Create(ctx, dept)
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*model.Department, error) {
	return s.deptRepo.GetByID(ctx, id)
}

func (s *departmentService) Update(ctx context.Context, dept *model.Department) error {
	existing, err := s.deptRepo.GetByID(ctx, dept.ID)
	if err != nil {
		return err
	}
	if dept.ParentID == dept.ID {
		return ErrDeptParentSelf
	}
	if dept.ParentID != "" && dept.ParentID != existing.ParentID {
		if _, err := s.deptRepo.GetByID(ctx, dept.ParentID); err != nil {
			return ErrDeptParentMissing
		}
	}
	return s.deptRepo.Update(ctx, dept)
}

func (s *departmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.deptRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.deptRepo.Delete(ctx, id)
}

func (s *departmentService) GetTree(ctx context.Context, status string) ([]*model.Department, error) {
	depts, err := s.deptRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return treeutil.ToTree(depts), nil
}

func (s *departmentService) GetFlatList(ctx context.Context, status string) ([]*model.Department, error) {
	tree, err := s.GetTree(ctx, status)
	if err != nil {
		return nil, err
	}
	return treeutil.Flatten(tree), nil
}
