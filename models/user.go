package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"size:64;index" json:"business_id"`
	Username   string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email      *string   `gorm:"size:100;unique" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	IsActive   *bool     `gorm:"not null" json:"is_active"`
	Role       UserRole  `gorm:"type:enum('A','S','B');default:B" json:"role"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone" validate:"phone"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role"`
}

/*
caches:
	User:$username
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

// CreateUser registers a new account. Each registration gets its own
// business id; the wallet row is created alongside so ledger postings
// never race wallet creation.
func CreateUser(ctx context.Context, input NewUser) (*User, error) {
	db := config.GetDB()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	phone, err := utils.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role != UserRoleSeller && role != UserRoleBuyer {
		role = UserRoleBuyer
	}

	active := true
	user := User{
		BusinessId: uuid.NewString(),
		Username:   strings.TrimSpace(input.Username),
		Name:       strings.TrimSpace(input.Name),
		Phone:      phone,
		Password:   string(hashed),
		IsActive:   &active,
		Role:       role,
	}
	if e := strings.TrimSpace(input.Email); e != "" {
		user.Email = &e
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		wallet := Wallet{
			BusinessId: user.BusinessId,
			UserId:     user.ID,
		}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername reads through the redis cache.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	_ = config.SetRedisObject("User:"+username, user, 15*time.Minute)
	return &user, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the user.
func Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, errors.New("account disabled")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid username or password")
	}
	return user, nil
}
