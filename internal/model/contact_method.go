package model

// ContactMethod 联系方式（Email、SMS、Phone），只由种子数据创建
type ContactMethod struct {
	BaseModel
	Name string `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
}

// TableName 指定表名
func (ContactMethod) TableName() string {
	return "contact_methods"
}

// 种子数据里的联系方式名称
const (
	ContactMethodEmail = "Email"
	ContactMethodSMS   = "SMS"
	ContactMethodPhone = "Phone"
)
