package models

import "time"

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:80;not null;index" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// Product.Category is a copy of the category name taken at creation time,
// not a foreign key.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Category  string    `gorm:"size:80;not null" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// CreateProductRequest uses pointers so that a missing field is rejected
// while an empty string or zero price is accepted.
type CreateProductRequest struct {
	Name     *string  `json:"name" binding:"required"`
	Price    *float64 `json:"price" binding:"required"`
	Category *string  `json:"category" binding:"required"`
	Quantity int      `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
