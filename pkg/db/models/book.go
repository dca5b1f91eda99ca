package models

import "time"

// Book is the catalog metadata row the warehouse consults for identifier
// validity. The catalog CRUD itself lives outside this service; the
// warehouse only reads.
type Book struct {
	ID        string    `gorm:"column:id;type:char(24);primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Author    string    `gorm:"column:author"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table aligned with the migrations.
func (Book) TableName() string {
	return "books"
}
