package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	FullName     string    `gorm:"not null;size:255"             json:"fullName"`
	Role         string    `gorm:"not null;size:16;default:USER" json:"role"`
	Enabled      bool      `gorm:"not null;default:true"         json:"enabled"`
	CreatedAt    time.Time `                                     json:"createdAt"`
	UpdatedAt    time.Time `                                     json:"updatedAt"`
}
