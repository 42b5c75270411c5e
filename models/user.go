package models

import (
	"chequeai/db"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID           uint64 `gorm:"primaryKey" json:"id"`
	CreatedAt    int64  `json:"-"`
	UpdatedAt    int64  `json:"-"`
	LastLoginAt  int64  `json:"-"`
	Username     string `gorm:"type:varchar(100);index:uniq_username,unique;not null" json:"username"`
	Email        string `gorm:"type:varchar(150);index:uniq_email,unique;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(100);not null" json:"-"`
}

const MinPasswordLength = 6

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrUserNotFound       = errors.New("user not found")
)

func UserCreate(username, email, plainTextPassword string) (u User, err error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(plainTextPassword) < MinPasswordLength {
		return u, ErrPasswordTooShort
	}
	if taken, err := loginTaken(0, username, email); err != nil {
		return u, err
	} else if taken {
		return u, ErrUserExists
	}
	u.Username = username
	u.Email = email
	if err = u.SetPassword(plainTextPassword); err != nil {
		return u, err
	}
	return u, db.Instance.Create(&u).Error
}

// UserLogin accepts either the username or the email as login
func UserLogin(login, plainTextPassword string) (u User, err error) {
	login = strings.TrimSpace(login)
	err = db.Instance.First(&u, "username = ? OR email = ?", login, strings.ToLower(login)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrInvalidCredentials
	} else if err != nil {
		return User{}, err
	}
	if !u.CheckPassword(plainTextPassword) {
		return User{}, ErrInvalidCredentials
	}
	u.LastLoginAt = time.Now().Unix()
	if err = db.Instance.Model(&u).UpdateColumn("last_login_at", u.LastLoginAt).Error; err != nil {
		return User{}, err
	}
	return u, nil
}

func UserGet(id uint64) (u User, err error) {
	err = db.Instance.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrUserNotFound
	}
	return
}

func (u *User) SetPassword(plainTextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(plainTextPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainTextPassword)) == nil
}

func (u *User) ChangePassword(currentPassword, newPassword string) error {
	if !u.CheckPassword(currentPassword) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	return db.Instance.Model(u).Update("password_hash", u.PasswordHash).Error
}

// UpdateProfile changes username and/or email. Empty values are left untouched.
func (u *User) UpdateProfile(username, email string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		username = u.Username
	}
	if email == "" {
		email = u.Email
	}
	if taken, err := loginTaken(u.ID, username, email); err != nil {
		return err
	} else if taken {
		return ErrUserExists
	}
	u.Username = username
	u.Email = email
	return db.Instance.Model(u).Updates(map[string]any{"username": username, "email": email}).Error
}

func loginTaken(exceptID uint64, username, email string) (bool, error) {
	var count int64
	err := db.Instance.Model(&User{}).
		Where("(username = ? OR email = ?) AND id != ?", username, email, exceptID).
		Count(&count).Error
	return count > 0, err
}
