package user

import (
	"gorm.io/gorm"
)

const RoleUser = "USER"
const RoleAdmin = "ADMIN"

type User struct {
	gorm.Model
	UUID        string `gorm:"uniqueIndex"`
	Email       string `gorm:"uniqueIndex"`
	Username    string `gorm:"uniqueIndex"`
	DisplayName string
	// PasswordHash is empty for Google-only accounts; GoogleSub is empty
	// for local-only accounts. Hybrid accounts carry both.
	PasswordHash string
	GoogleSub    string `gorm:"index"`
	Role         string
}

// CanLogin reports whether at least one authentication method is set.
func (u *User) CanLogin() bool {
	return u.PasswordHash != "" || u.GoogleSub != ""
}

type UserOut struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type CredentialsIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterIn struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginOut struct {
	Token string  `json:"token"`
	User  UserOut `json:"user"`
}

// SessionOut backs the frontend session cache: who am I, and is a Google
// account linked.
type SessionOut struct {
	User         UserOut `json:"user"`
	GoogleLinked bool    `json:"googleLinked"`
}

func UserToOut(user *User) UserOut {
	return UserOut{
		ID:          user.UUID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}
}
