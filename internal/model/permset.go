package model

// UserPermissionSet 用户有效权限集合
// 由解析器在登录或缓存失效时整体计算，整体替换，从不原地修改
type UserPermissionSet struct {
	UserID            string             `json:"user_id"`
	Roles             []*Role            `json:"roles"`
	PermissionCodes   map[string]bool    `json:"permission_codes"`     // 全部权限代码，用于快速成员判定
	MenuPermissions   []*PermissionNode  `json:"menu_permissions"`     // menu 类型权限裁剪后的树
	ButtonCodes       map[string]bool    `json:"button_codes"`         // button 类型权限代码
	APICodes          map[string]bool    `json:"api_codes"`            // api 类型权限代码
	DataScopeByModule map[string]string  `json:"data_scope_by_module"` // 模块 -> 最宽数据范围
}

// NewUserPermissionSet 创建空权限集合
func NewUserPermissionSet(userID string) *UserPermissionSet {
	return &UserPermissionSet{
		UserID:            userID,
		Roles:             []*Role{},
		PermissionCodes:   map[string]bool{},
		MenuPermissions:   []*PermissionNode{},
		ButtonCodes:       map[string]bool{},
		APICodes:          map[string]bool{},
		DataScopeByModule: map[string]string{},
	}
}

// Has 检查是否持有指定权限代码
func (s *UserPermissionSet) Has(code string) bool {
	return s.PermissionCodes[code]
}

// HasAny 检查是否持有任一指定权限代码
func (s *UserPermissionSet) HasAny(codes ...string) bool {
	for _, code := range codes {
		if s.PermissionCodes[code] {
			return true
		}
	}
	return false
}

// HasAll 检查是否持有全部指定权限代码
func (s *UserPermissionSet) HasAll(codes ...string) bool {
	for _, code := range codes {
		if !s.PermissionCodes[code] {
			return false
		}
	}
	return true
}

// HasRole 检查是否持有指定角色代码
func (s *UserPermissionSet) HasRole(roleCode string) bool {
	for _, role := range s.Roles {
		if role.Code == roleCode {
			return true
		}
	}
	return false
}

// DataScope 返回指定模块的数据范围，未授权模块返回空串
func (s *UserPermissionSet) DataScope(module string) string {
	return s.DataScopeByModule[module]
}
