package model

// Department 部门模型
// 部门按 ParentID 构成层级树，员工通过 DeptID 归属部门
type Department struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null" json:"name"`        // 部门名称
	Code      string `gorm:"type:varchar(50);uniqueIndex" json:"code"`      // 部门代码
	ParentID  string `gorm:"type:char(36);index" json:"parent_id"`          // 上级部门 ID，空表示顶级部门
	LeaderID  string `gorm:"type:char(36)" json:"leader_id,omitempty"`      // 部门负责人用户 ID
	SortOrder int    `gorm:"default:0" json:"sort_order"`                   // 同级排序
	Status    string `gorm:"type:varchar(20);default:active" json:"status"` // 状态

	// 树结构仅在内存中组装，不落库
	Children []*Department `gorm:"-" json:"children,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string {
	return "departments"
}

// IsActive 检查部门是否启用
func (d *Department) IsActive() bool {
	return d.Status == StatusActive
}

// 以下方法实现 treeutil.Node，供通用树构建复用

func (d *Department) TreeID() string                   { return d.ID }
func (d *Department) TreeParentID() string             { return d.ParentID }
func (d *Department) TreeSort() int                    { return d.SortOrder }
func (d *Department) TreeChildren() []*Department      { return d.Children }
func (d *Department) SetTreeChildren(cs []*Department) { d.Children = cs }
