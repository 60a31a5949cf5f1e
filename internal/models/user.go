// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is both the login identity and the point-holding account.
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Ledger state. Only the ledger services write these.
	Balance        int64 `json:"balance" gorm:"not null;default:0;check:chk_users_balance,balance >= 0"`
	TotalPurchases int64 `json:"total_purchases" gorm:"not null;default:0"`
	TotalSales     int64 `json:"total_sales" gorm:"not null;default:0"`

	// Relationships
	Files []File `json:"files,omitempty" gorm:"foreignKey:OwnerID"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
