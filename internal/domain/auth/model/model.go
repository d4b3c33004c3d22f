package model

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50" json:"username"`
	Email        string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Avatar       *string   `gorm:"size:255" json:"avatar"`
	RefreshToken *string   `gorm:"type:text" json:"-"`
	Confirmed    bool      `gorm:"default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:50;index;not null" json:"first_name"`
	LastName  string    `gorm:"size:50;index;not null" json:"last_name"`
	Email     string    `gorm:"size:100;not null;uniqueIndex:idx_contacts_user_email,priority:2" json:"email"`
	Phone     string    `gorm:"size:16;not null" json:"phone"`
	Birthday  Date      `gorm:"type:date;not null" json:"birthday"`
	DataAdd   *string   `gorm:"size:250" json:"data_add"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_contacts_user_email,priority:1" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// ContactFilter narrows a search; empty fields are ignored.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

type UpcomingBirthday struct {
	ContactID          uint   `json:"contact_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	CongratulationDate string `json:"congratulation_date"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
