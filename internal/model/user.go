package model

import "gorm.io/gorm"

type UserRole string

const (
	RoleLandlord UserRole = "landlord"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	FullName string `json:"full_name" gorm:"not null"`

	PhoneNumber string   `json:"phone_number"`
	Role        UserRole `json:"role" gorm:"type:varchar(16);not null;default:'landlord'"`

	Listings []Listing `json:"-" gorm:"foreignKey:LandlordID"`
	Payments []Payment `json:"-" gorm:"foreignKey:PayerID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"username":     u.Username,
		"full_name":    u.FullName,
		"phone_number": u.PhoneNumber,
		"role":         u.Role,
	}
}
