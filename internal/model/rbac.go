// Package model 定义数据模型
package model

// 权限节点类型
const (
	PermTypeMenu   = "menu"   // 菜单权限，驱动前端导航
	PermTypeButton = "button" // 按钮权限，控制页面操作
	PermTypeAPI    = "api"    // 接口权限，控制后端调用
	PermTypeData   = "data"   // 数据权限，控制行级可见范围
)

// 数据权限范围，从窄到宽
const (
	DataScopeSelf       = "self"         // 仅本人
	DataScopeDept       = "dept"         // 本部门
	DataScopeDeptAndSub = "dept_and_sub" // 本部门及下级部门
	DataScopeAll        = "all"          // 全部数据
)

// dataScopeRank 数据范围宽度排序，数值越大范围越宽
var dataScopeRank = map[string]int{
	DataScopeSelf:       1,
	DataScopeDept:       2,
	DataScopeDeptAndSub: 3,
	DataScopeAll:        4,
}

// BroaderDataScope 返回两个数据范围中较宽的一个
// 权限解析按角色并集取最宽范围
func BroaderDataScope(a, b string) string {
	if dataScopeRank[b] > dataScopeRank[a] {
		return b
	}
	return a
}

// PermissionNode 权限节点模型
// Type 在创建时固定，决定哪些可选字段有意义：
// menu 使用 Path/Component，api 使用 APIPath/APIMethod，data 使用 DataScope
type PermissionNode struct {
	BaseModel
	Code      string `gorm:"type:varchar(150);uniqueIndex" json:"code"`     // 权限代码，冒号分隔，如 system:user:list
	Name      string `gorm:"type:varchar(100);not null" json:"name"`        // 权限名称
	Type      string `gorm:"type:varchar(20);not null;index" json:"type"`   // 节点类型：menu, button, api, data
	Module    string `gorm:"type:varchar(50);index" json:"module"`          // 所属功能模块，如 system, leave, expense
	ParentID  string `gorm:"type:char(36);index" json:"parent_id"`          // 父节点 ID，空表示根节点
	Path      string `gorm:"type:varchar(255)" json:"path,omitempty"`       // 前端路由路径（menu 类型）
	Component string `gorm:"type:varchar(255)" json:"component,omitempty"`  // 前端组件路径（menu 类型）
	Icon      string `gorm:"type:varchar(50)" json:"icon,omitempty"`        // 菜单图标（menu 类型）
	APIPath   string `gorm:"type:varchar(255)" json:"api_path,omitempty"`   // 接口路径（api 类型）
	APIMethod string `gorm:"type:varchar(10)" json:"api_method,omitempty"`  // 接口方法（api 类型）
	DataScope string `gorm:"type:varchar(20)" json:"data_scope,omitempty"`  // 数据范围（data 类型）
	SortOrder int    `gorm:"default:0" json:"sort_order"`                   // 同级排序，升序
	IsPreset  bool   `gorm:"default:false" json:"is_preset"`                // 是否系统预置权限
	Status    string `gorm:"type:varchar(20);default:active" json:"status"` // 状态

	// 树结构仅在内存中组装，不落库
	Children []*PermissionNode `gorm:"-" json:"children,omitempty"`
}

// TableName 指定表名
func (PermissionNode) TableName() string {
	return "permission_nodes"
}

// IsActive 检查权限是否启用
func (p *PermissionNode) IsActive() bool {
	return p.Status == StatusActive
}

// 角色类型
const (
	RoleTypeSystem = "system" // 系统预置角色
	RoleTypeCustom = "custom" // 自定义角色
)

// Role 角色模型
type Role struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`        // 角色名称
	Code        string `gorm:"type:varchar(50);uniqueIndex" json:"code"`      // 角色代码，如 admin, manager, employee
	Type        string `gorm:"type:varchar(20);default:custom" json:"type"`   // 角色类型：system, custom
	Description string `gorm:"type:varchar(500)" json:"description"`          // 角色描述
	SortOrder   int    `gorm:"default:0" json:"sort_order"`                   // 排序
	IsPreset    bool   `gorm:"default:false" json:"is_preset"`                // 预置角色不可删除
	Status      string `gorm:"type:varchar(20);default:active" json:"status"` // 状态

	// 关联
	Permissions []PermissionNode `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// IsActive 检查角色是否启用
func (r *Role) IsActive() bool {
	return r.Status == StatusActive
}

// UserRole 用户角色关联模型
type UserRole struct {
	BaseModel
	UserID string `gorm:"type:char(36);index;not null" json:"user_id"` // 用户 ID
	RoleID string `gorm:"type:char(36);index;not null" json:"role_id"` // 角色 ID

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// TableName 指定表名
func (UserRole) TableName() string {
	return "user_roles"
}

// RolePermission 角色权限关联模型（GORM 自动创建，这里显式定义以便查询）
type RolePermission struct {
	RoleID           string `gorm:"type:char(36);primaryKey" json:"role_id"`
	PermissionNodeID string `gorm:"type:char(36);primaryKey" json:"permission_node_id"`
}

// TableName 指定表名
func (RolePermission) TableName() string {
	return "role_permissions"
}

// 系统内置角色代码
const (
	RoleAdmin    = "admin"    // 系统管理员
	RoleManager  = "manager"  // 部门主管
	RoleEmployee = "employee" // 普通员工
)

// DefaultSystemRoles 系统默认角色列表
func DefaultSystemRoles() []Role {
	return []Role{
		{
			Name:        "系统管理员",
			Code:        RoleAdmin,
			Type:        RoleTypeSystem,
			Description: "拥有系统所有权限",
			IsPreset:    true,
			Status:      StatusActive,
		},
		{
			Name:        "部门主管",
			Code:        RoleManager,
			Type:        RoleTypeSystem,
			Description: "管理本部门及下级部门的审批与数据",
			SortOrder:   1,
			IsPreset:    true,
			Status:      StatusActive,
		},
		{
			Name:        "普通员工",
			Code:        RoleEmployee,
			Type:        RoleTypeSystem,
			Description: "基本办公功能权限",
			SortOrder:   2,
			IsPreset:    true,
			Status:      StatusActive,
		},
	}
}

// DefaultSystemPermissions 系统默认权限目录
// 覆盖 OA 各功能模块的菜单、按钮和数据权限，按 Code 幂等创建
func DefaultSystemPermissions() []PermissionNode {
	perms := []PermissionNode{
		{Code: "system", Name: "系统管理", Type: PermTypeMenu, Module: "system", Path: "/system", Component: "Layout", Icon: "setting", IsPreset: true, Status: StatusActive},
		{Code: "system:user:list", Name: "用户管理", Type: PermTypeMenu, Module: "system", Path: "/system/user", Component: "system/user/index", SortOrder: 1, IsPreset: true, Status: StatusActive},
		{Code: "system:role:list", Name: "角色管理", Type: PermTypeMenu, Module: "system", Path: "/system/role", Component: "system/role/index", SortOrder: 2, IsPreset: true, Status: StatusActive},
		{Code: "system:menu:list", Name: "菜单管理", Type: PermTypeMenu, Module: "system", Path: "/system/menu", Component: "system/menu/index", SortOrder: 3, IsPreset: true, Status: StatusActive},
		{Code: "system:dept:list", Name: "部门管理", Type: PermTypeMenu, Module: "system", Path: "/system/dept", Component: "system/dept/index", SortOrder: 4, IsPreset: true, Status: StatusActive},
		{Code: "system:dict:list", Name: "字典管理", Type: PermTypeMenu, Module: "system", Path: "/system/dict", Component: "system/dict/index", SortOrder: 5, IsPreset: true, Status: StatusActive},
		{Code: "system:user:create", Name: "新增用户", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:user:update", Name: "编辑用户", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:user:delete", Name: "删除用户", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:role:create", Name: "新增角色", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:role:update", Name: "编辑角色", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:role:delete", Name: "删除角色", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:role:assign", Name: "分配角色", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:role:grant", Name: "分配权限", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:menu:create", Name: "新增菜单", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:menu:delete", Name: "删除菜单", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:dept:create", Name: "新增部门", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:dept:update", Name: "编辑部门", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:dept:delete", Name: "删除部门", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "system:dict:manage", Name: "维护字典", Type: PermTypeButton, Module: "system", IsPreset: true, Status: StatusActive},
		{Code: "api:system:user", Name: "用户接口", Type: PermTypeAPI, Module: "system", APIPath: "/api/v1/users", APIMethod: "*", IsPreset: true, Status: StatusActive},
		{Code: "api:system:role", Name: "角色接口", Type: PermTypeAPI, Module: "system", APIPath: "/api/v1/roles", APIMethod: "*", IsPreset: true, Status: StatusActive},
		{Code: "data:system:all", Name: "系统数据-全部", Type: PermTypeData, Module: "system", DataScope: DataScopeAll, IsPreset: true, Status: StatusActive},
	}
	return perms
}
