package model

import (
	"time"
)

// BaseModel 公共字段。预约是硬删除，这里不带 DeletedAt
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"-"`
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
}
