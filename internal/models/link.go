package models

import "time"

// SlugMaxLength максимальная длина короткого кода, допустимая в хранилище.
const SlugMaxLength = 8

// URLMaxLength максимальная длина исходной ссылки.
const URLMaxLength = 2048

// Link структура модели хранения короткой ссылки.
type Link struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	Slug        string    `json:"slug"        gorm:"size:8;not null;uniqueIndex"`
	URL         string    `json:"url"         gorm:"size:2048;not null"`
	CreatedAt   time.Time `json:"createdAt"   gorm:"not null"`
	Clicks      int64     `json:"clicks"      gorm:"not null;default:0"`
	IPAddress   string    `json:"ipAddress"   gorm:"size:64;not null;index"`
	VisitorUUID *string   `json:"visitorUUID" gorm:"size:36"`
}

// TableName имя таблицы для gorm.
func (Link) TableName() string {
	return "links"
}
