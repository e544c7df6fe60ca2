package models

import "time"

// Visit запись о переходе по короткой ссылке.
type Visit struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	Slug      string    `json:"slug"      gorm:"size:8;not null;index"`
	UserAgent string    `json:"userAgent" gorm:"not null;default:''"`
	IPAddress string    `json:"ipAddress" gorm:"size:64;not null"`
	Language  string    `json:"language"  gorm:"not null;default:''"`
	Referrer  string    `json:"referrer"  gorm:"not null;default:''"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// TableName имя таблицы для gorm.
func (Visit) TableName() string {
	return "visits"
}
