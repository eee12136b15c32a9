package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidLogin      = errors.New("invalid username or password")
	ErrUserDisabled      = errors.New("user is disabled")
	ErrSessionStoreUnset = errors.New("session store is not configured")
	ErrSessionExpired    = errors.New("session expired")
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     *string   `gorm:"size:100;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	Role      UserRole  `gorm:"size:1;not null;default:'S'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" validate:"required,max=100"`
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"max=100"`
	Password string   `json:"password" validate:"required,min=8"`
	IsActive *bool    `json:"is_active"`
	Role     UserRole `json:"role"`
}

type LoginInfo struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
caches:
	User:$username
	Token:$token -> username
	Tokens:$username -> set of tokens
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

func (user *User) PrepareGive() {
	user.Password = ""
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, utils.NewValidationError("email", "invalid email address")
	}
	if input.Role == "" {
		input.Role = UserRoleStaff
	}
	if input.Role != UserRoleAdmin && input.Role != UserRoleStaff {
		return nil, utils.NewValidationError("role", "role must be A or S")
	}
	username := html.EscapeString(strings.TrimSpace(input.Username))
	if err := utils.ValidateUnique[User](ctx, "username", username, nil); err != nil {
		return nil, err
	}
	var email *string
	if input.Email != "" {
		lower := strings.ToLower(input.Email)
		if err := utils.ValidateUnique[User](ctx, "email", lower, nil); err != nil {
			return nil, err
		}
		email = &lower
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}
	user := User{
		Username: username,
		Name:     input.Name,
		Email:    email,
		Password: hashed,
		IsActive: isActive,
		Role:     input.Role,
	}
	if err := config.GetDB().WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

func ListUsers(ctx context.Context) ([]*User, error) {
	users, err := utils.FetchAllModels[User](ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PrepareGive()
	}
	return users, nil
}

func findUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}
	if err := config.GetDB().WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := config.SetRedisObject("User:"+username, &user, utils.SessionLifespan()); err != nil {
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	if config.GetRedisDB() == nil {
		return nil, ErrSessionStoreUnset
	}
	user, err := findUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidLogin
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, ErrUserDisabled
	}

	token := uuid.NewString()
	lifespan := utils.SessionLifespan()
	if err := config.AddRedisSet("Tokens:"+user.Username, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.Username, lifespan); err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:     token,
		Name:      user.Name,
		Role:      string(user.Role),
		ExpiresAt: time.Now().Add(lifespan).UTC(),
	}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// UserFromSession resolves a session token to its active user.
func UserFromSession(ctx context.Context, token string) (*User, error) {
	if config.GetRedisDB() == nil {
		return nil, ErrSessionStoreUnset
	}
	username, exists, err := config.GetRedisValue("Token:" + token)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSessionExpired
	}
	user, err := findUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func (user *User) DestroyAllSessions(ctx context.Context) error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	return config.RemoveRedisKey("Tokens:" + user.Username)
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if len(newPassword) < 8 {
		return nil, utils.NewValidationError("new_password", "min")
	}
	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, utils.NewValidationError("old_password", "old password is wrong")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(user).UpdateColumn("password", hashed).Error; err != nil {
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	if err := user.DestroyAllSessions(ctx); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

// EnsureAdmin creates the admin account when no user has that username yet.
func EnsureAdmin(ctx context.Context, username string, name string, password string) (*User, bool, error) {
	var existing User
	err := config.GetDB().WithContext(ctx).Where("username = ?", username).Take(&existing).Error
	if err == nil {
		existing.PrepareGive()
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	user, err := CreateUser(ctx, &NewUser{
		Username: username,
		Name:     name,
		Password: password,
		Role:     UserRoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
