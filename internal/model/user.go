package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles. The analyst role is an explicit column resolved at login,
// never a username comparison.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the user model stored in the database
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password    string         `json:"-" gorm:"type:varchar(255)"`
	Name        string         `json:"name" gorm:"type:varchar(100)"`
	Phone       string         `json:"phone" gorm:"type:varchar(30)"`
	BirthDate   string         `json:"birth_date" gorm:"type:varchar(10)"`
	Role        string         `json:"role" gorm:"type:varchar(16);default:user"`
	Status      string         `json:"status" gorm:"type:varchar(16);default:active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin reports whether the user holds the analyst role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EnsureAdmin creates the analyst account if it does not exist yet, or
// promotes an existing account with the given email to the admin role.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	var user User
	result := db.Where("email = ?", email).First(&user)
	if result.Error == nil {
		if user.Role == RoleAdmin {
			return nil
		}
		return db.Model(&user).Update("role", RoleAdmin).Error
	}
	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user = User{
		Email:    email,
		Password: string(hashed),
		Name:     "Analista",
		Role:     RoleAdmin,
		Status:   "active",
	}
	return db.Create(&user).Error
}
