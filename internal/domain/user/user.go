package user

import (
	"strings"
	"time"

	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
)

// User is hard-deletable: removal is physical and irreversible.
type User struct {
	aggregates.Base

	UserName      string     `gorm:"column:user_name;size:256;not null;uniqueIndex" json:"user_name"`
	Email         string     `gorm:"column:email;size:256;not null;uniqueIndex" json:"email"`
	FirstName     string     `gorm:"column:first_name;size:50;not null" json:"first_name"`
	LastName      string     `gorm:"column:last_name;size:50;not null" json:"last_name"`
	LastLoginDate *time.Time `gorm:"column:last_login_date" json:"last_login_date,omitempty"`
	IsActive      bool       `gorm:"column:is_active;not null" json:"is_active"`
}

func (User) TableName() string { return "users" }

func NewUser(userName, email, firstName, lastName string, createdBy *string) (*User, error) {
	userName = strings.TrimSpace(userName)
	email = strings.TrimSpace(email)
	if userName == "" || email == "" {
		return nil, aggregates.ValidationError("user.new", "user name and email are required")
	}
	if len(firstName) > 50 || len(lastName) > 50 {
		return nil, aggregates.ValidationError("user.new", "names exceed 50 characters")
	}
	return &User{
		Base:      aggregates.NewBase(createdBy, time.Now()),
		UserName:  userName,
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		IsActive:  true,
	}, nil
}

func (u *User) RecordLogin() {
	t := time.Now().UTC()
	u.LastLoginDate = &t
}

func (u *User) Activate(updatedBy *string) {
	u.IsActive = true
	u.Touch(updatedBy, time.Now())
}

func (u *User) Deactivate(updatedBy *string) {
	u.IsActive = false
	u.Touch(updatedBy, time.Now())
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
