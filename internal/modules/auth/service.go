package auth

import (
	"errors"
	"time"

	"github.com/portfolio-space/core/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrAlreadySetup   = errors.New("owner account already exists")
)

type RegisterDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileDTO struct {
	Name   *string `json:"name"`
	Mail   *string `json:"mail"`
	Avatar *string `json:"avatar"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates the owner account. Only one account may exist.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	var count int64
	if err := s.db.Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySetup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.UserModel{
		Username: dto.Username,
		Name:     dto.Name,
		Password: string(hash),
		Mail:     dto.Mail,
	}
	if user.Name == "" {
		user.Name = dto.Username
	}
	return &user, s.db.Create(&user).Error
}

// Login verifies credentials and records the login.
func (s *Service) Login(dto *LoginDTO, ip string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.First(&user, "username = ?", dto.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)) != nil {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	user.LastLoginTime = &now
	user.LastLoginIP = ip
	return &user, nil
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Owner returns the single owner account, or nil when not set up yet.
func (s *Service) Owner() (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.Order("created_at ASC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateProfile(id string, dto *UpdateProfileDTO) (*models.UserModel, error) {
	user, err := s.GetByID(id)
	if err != nil || user == nil {
		return user, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Mail != nil {
		updates["mail"] = *dto.Mail
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
	}
	if len(updates) == 0 {
		return user, nil
	}
	return user, s.db.Model(user).Updates(updates).Error
}
