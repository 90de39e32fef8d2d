package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserEmailExists    = errors.New("user with this email already exists")
	ErrUserUsernameExists = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	uniqueUsersUsername = "uni_users_username"
	uniqueUsersEmail    = "uni_users_email"
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"size:150;unique;not null"`
	Email    string `gorm:"size:254;unique;not null"`
	Password string `gorm:"not null"`

	DateJoined time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return User{}, translateUserErr(result.Error)
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByUsername(ctx context.Context, username string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).
		Model(&user).
		Select("username", "email", "password", "updated_at").
		Updates(&user)
	if result.Error != nil {
		return User{}, translateUserErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.FindByID(ctx, user.ID)
}

// Delete removes the user; owned items and every change log row that
// references the user or those items go with it through FK cascades.
func (d *UserDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func translateUserErr(err error) error {
	switch uniqueViolation(err) {
	case uniqueUsersEmail:
		return ErrUserEmailExists
	case uniqueUsersUsername:
		return ErrUserUsernameExists
	}

	return err
}
