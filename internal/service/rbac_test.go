package service

import (
	"context"
	"testing"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRoleRepository 角色仓库 Mock
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id string) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoleRepository) List(ctx context.Context, page *repository.Pagination) ([]*model.Role, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]*model.Role), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoleRepository) AddPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	args := m.Called(ctx, roleID, permissionIDs)
	return args.Error(0)
}

func (m *MockRoleRepository) RemovePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	args := m.Called(ctx, roleID, permissionIDs)
	return args.Error(0)
}

func (m *MockRoleRepository) GetPermissions(ctx context.Context, roleID string) ([]model.PermissionNode, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).([]model.PermissionNode), args.Error(1)
}

// MockPermissionRepository 权限目录仓库 Mock
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Create(ctx context.Context, perm *model.PermissionNode) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *MockPermissionRepository) GetByID(ctx context.Context, id string) (*model.PermissionNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionNode), args.Error(1)
}

func (m *MockPermissionRepository) GetByCode(ctx context.Context, code string) (*model.PermissionNode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionNode), args.Error(1)
}

func (m *MockPermissionRepository) Update(ctx context.Context, perm *model.PermissionNode) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *MockPermissionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPermissionRepository) List(ctx context.Context, module string) ([]*model.PermissionNode, error) {
	args := m.Called(ctx, module)
	return args.Get(0).([]*model.PermissionNode), args.Error(1)
}

func (m *MockPermissionRepository) BatchCreate(ctx context.Context, perms []model.PermissionNode) error {
	args := m.Called(ctx, perms)
	return args.Error(0)
}

// MockUserRoleRepository 用户角色仓库 Mock
type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Assign(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockUserRoleRepository) Revoke(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockUserRoleRepository) GetUserRoles(ctx context.Context, userID string) ([]*model.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*model.Role), args.Error(1)
}

func (m *MockUserRoleRepository) GetRoleUserIDs(ctx context.Context, roleID string) ([]string, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRoleRepository) HasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	args := m.Called(ctx, userID, roleCode)
	return args.Bool(0), args.Error(1)
}

// fakeAuthz 记录失效调用的授权服务桩
type fakeAuthz struct {
	invalidatedUsers []string
	invalidatedAll   int
}

func (f *fakeAuthz) ResolveUserPermissions(ctx context.Context, userID string) (*model.UserPermissionSet, error) {
	return model.NewUserPermissionSet(userID), nil
}

func (f *fakeAuthz) InvalidateUserPermissions(ctx context.Context, userID string) error {
	f.invalidatedUsers = append(f.invalidatedUsers, userID)
	return nil
}

func (f *fakeAuthz) InvalidateAllUserPermissions(ctx context.Context) error {
	f.invalidatedAll++
	return nil
}

func (f *fakeAuthz) CheckPermission(ctx context.Context, userID, code string) (bool, error) {
	return false, nil
}

func (f *fakeAuthz) CheckAnyPermission(ctx context.Context, userID string, codes []string) (bool, error) {
	return false, nil
}

func (f *fakeAuthz) CheckAllPermissions(ctx context.Context, userID string, codes []string) (bool, error) {
	return false, nil
}

func (f *fakeAuthz) CheckRole(ctx context.Context, userID, roleCode string) (bool, error) {
	return false, nil
}

func (f *fakeAuthz) GetUserMenuTree(ctx context.Context, userID string) ([]*model.PermissionNode, error) {
	return nil, nil
}

// 测试用例

func TestRBACService_CreateRole(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	role := &model.Role{
		Name: "测试角色",
		Code: "test_role",
	}

	// 角色不存在，创建成功
	roleRepo.On("GetByCode", ctx, "test_role").Return(nil, ErrRoleNotFound).Once()
	roleRepo.On("Create", ctx, role).Return(nil).Once()

	err := svc.CreateRole(ctx, role)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleTypeCustom, role.Type)
	assert.Equal(t, model.StatusActive, role.Status)
	roleRepo.AssertExpectations(t)
}

func TestRBACService_CreateRole_CodeExists(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	existingRole := &model.Role{
		Name: "已存在角色",
		Code: "existing_role",
	}

	role := &model.Role{
		Name: "新角色",
		Code: "existing_role",
	}

	roleRepo.On("GetByCode", ctx, "existing_role").Return(existingRole, nil).Once()

	err := svc.CreateRole(ctx, role)
	assert.Equal(t, ErrRoleCodeExists, err)
	roleRepo.AssertExpectations(t)
}

func TestRBACService_DeleteRole_Preset(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	presetRole := &model.Role{
		BaseModel: model.BaseModel{ID: "role-1"},
		Name:      "系统管理员",
		Code:      model.RoleAdmin,
		Type:      model.RoleTypeSystem,
		IsPreset:  true,
	}

	roleRepo.On("GetByID", ctx, "role-1").Return(presetRole, nil).Once()

	err := svc.DeleteRole(ctx, "role-1")
	assert.Equal(t, ErrPresetRole, err)
	roleRepo.AssertExpectations(t)
}

func TestRBACService_DeleteRole_InvalidatesHolders(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)
	authz := &fakeAuthz{}

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, authz)

	customRole := &model.Role{
		BaseModel: model.BaseModel{ID: "role-2"},
		Name:      "考勤专员",
		Code:      "attendance_clerk",
		Type:      model.RoleTypeCustom,
	}

	roleRepo.On("GetByID", ctx, "role-2").Return(customRole, nil).Once()
	userRoleRepo.On("GetRoleUserIDs", ctx, "role-2").Return([]string{"u-1", "u-2"}, nil).Once()
	roleRepo.On("Delete", ctx, "role-2").Return(nil).Once()

	err := svc.DeleteRole(ctx, "role-2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"u-1", "u-2"}, authz.invalidatedUsers)
	roleRepo.AssertExpectations(t)
	userRoleRepo.AssertExpectations(t)
}

func TestRBACService_CreatePermission_InvalidType(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	err := svc.CreatePermission(ctx, &model.PermissionNode{
		Code: "bad",
		Name: "非法节点",
		Type: "widget",
	})
	assert.Equal(t, ErrInvalidPermType, err)
}

func TestRBACService_CreatePermission_InvalidDataScope(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	err := svc.CreatePermission(ctx, &model.PermissionNode{
		Code:      "data:hr:bad",
		Name:      "非法范围",
		Type:      model.PermTypeData,
		DataScope: "galaxy",
	})
	assert.Equal(t, ErrInvalidDataScope, err)
}

func TestRBACService_DeletePermission_Preset(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	preset := &model.PermissionNode{
		BaseModel: model.BaseModel{ID: "perm-1"},
		Code:      "system",
		Type:      model.PermTypeMenu,
		IsPreset:  true,
	}

	permRepo.On("GetByID", ctx, "perm-1").Return(preset, nil).Once()

	err := svc.DeletePermission(ctx, "perm-1")
	assert.Equal(t, ErrPresetPermission, err)
	permRepo.AssertExpectations(t)
}

func TestRBACService_DeletePermission_InvalidatesAll(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)
	authz := &fakeAuthz{}

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, authz)

	custom := &model.PermissionNode{
		BaseModel: model.BaseModel{ID: "perm-2"},
		Code:      "hr:leave:approve",
		Type:      model.PermTypeButton,
	}

	permRepo.On("GetByID", ctx, "perm-2").Return(custom, nil).Once()
	permRepo.On("Delete", ctx, "perm-2").Return(nil).Once()

	err := svc.DeletePermission(ctx, "perm-2")
	assert.NoError(t, err)
	assert.Equal(t, 1, authz.invalidatedAll)
	permRepo.AssertExpectations(t)
}

func TestRBACService_AssignRole(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)
	authz := &fakeAuthz{}

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, authz)

	role := &model.Role{
		BaseModel: model.BaseModel{ID: "role-1"},
		Code:      "employee",
	}

	roleRepo.On("GetByID", ctx, "role-1").Return(role, nil).Once()
	userRoleRepo.On("Assign", ctx, "user-1", "role-1").Return(nil).Once()

	err := svc.AssignRole(ctx, "user-1", "role-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, authz.invalidatedUsers)
	roleRepo.AssertExpectations(t)
	userRoleRepo.AssertExpectations(t)
}

func TestRBACService_AssignRole_NotFound(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	roleRepo.On("GetByID", ctx, "missing").Return(nil, ErrRoleNotFound).Once()

	err := svc.AssignRole(ctx, "user-1", "missing")
	assert.Equal(t, ErrRoleNotFound, err)
	roleRepo.AssertExpectations(t)
}

func TestRBACService_AddPermissionsToRole_InvalidatesHolders(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)
	authz := &fakeAuthz{}

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, authz)

	roleRepo.On("AddPermissions", ctx, "role-1", []string{"p-1", "p-2"}).Return(nil).Once()
	userRoleRepo.On("GetRoleUserIDs", ctx, "role-1").Return([]string{"u-9"}, nil).Once()

	err := svc.AddPermissionsToRole(ctx, "role-1", []string{"p-1", "p-2"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"u-9"}, authz.invalidatedUsers)
	roleRepo.AssertExpectations(t)
	userRoleRepo.AssertExpectations(t)
}

func TestRBACService_GetPermissionTree(t *testing.T) {
	ctx := context.Background()
	roleRepo := new(MockRoleRepository)
	permRepo := new(MockPermissionRepository)
	userRoleRepo := new(MockUserRoleRepository)

	svc := NewRBACService(roleRepo, permRepo, userRoleRepo, &fakeAuthz{})

	catalog := []*model.PermissionNode{
		{BaseModel: model.BaseModel{ID: "root"}, Code: "system", Type: model.PermTypeMenu, Status: model.StatusActive},
		{BaseModel: model.BaseModel{ID: "child"}, Code: "system:user:list", Type: model.PermTypeMenu, ParentID: "root", Status: model.StatusActive},
	}

	permRepo.On("List", ctx, "").Return(catalog, nil).Once()

	tree, err := svc.GetPermissionTree(ctx, model.PermTypeMenu)
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Equal(t, "system", tree[0].Code)
	assert.Len(t, tree[0].Children, 1)
	assert.Equal(t, "system:user:list", tree[0].Children[0].Code)
	permRepo.AssertExpectations(t)
}
