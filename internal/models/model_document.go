package models

import "time"

// Document is a note listed for sale. The settlement core only reads it.
type Document struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	// PriceCents is the price in minor currency units; 0 means free.
	PriceCents int64     `gorm:"column:price_cents;type:bigint;not null;default:0;check:price_cents >= 0" json:"price_cents"`
	SellerID   string    `gorm:"column:seller_id;type:varchar(64);not null;index" json:"seller_id"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	FilePath   string    `gorm:"column:file_path;type:varchar(512);not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) IsFree() bool {
	return d != nil && d.PriceCents == 0
}
