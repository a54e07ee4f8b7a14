package model

// DictType 数据字典类型
// 如 leave_type（请假类型）、asset_status（资产状态）
type DictType struct {
	BaseModel
	Name   string `gorm:"type:varchar(100);not null" json:"name"`        // 字典名称
	Code   string `gorm:"type:varchar(50);uniqueIndex" json:"code"`      // 字典类型代码
	Remark string `gorm:"type:varchar(500)" json:"remark,omitempty"`     // 备注
	Status string `gorm:"type:varchar(20);default:active" json:"status"` // 状态
}

// TableName 指定表名
func (DictType) TableName() string {
	return "dict_types"
}

// DictEntry 数据字典条目
type DictEntry struct {
	BaseModel
	TypeCode  string `gorm:"type:varchar(50);index;not null" json:"type_code"` // 所属字典类型代码
	Label     string `gorm:"type:varchar(100);not null" json:"label"`          // 显示标签
	Value     string `gorm:"type:varchar(100);not null" json:"value"`          // 字典值
	SortOrder int    `gorm:"default:0" json:"sort_order"`                      // 排序
	IsDefault bool   `gorm:"default:false" json:"is_default"`                  // 是否默认项
	Status    string `gorm:"type:varchar(20);default:active" json:"status"`    // 状态
}

// TableName 指定表名
func (DictEntry) TableName() string {
	return "dict_entries"
}
