package service

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Email normalisation
	"time"    // Token lifetime

	"jacket_marketplace/internal/domain" // Importing domain models
	"jacket_marketplace/internal/utils"  // JWT and vault

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterInput is a validated registration request
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      domain.Role
	IBAN      string
	WiseKey   string // Plain payout credential, encrypted before storage
}

// UserService registers and authenticates users
type UserService struct {
	db        *gorm.DB
	crypto    *utils.CryptoHelper
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService wires the account use cases
func NewUserService(db *gorm.DB, crypto *utils.CryptoHelper, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{db: db, crypto: crypto, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// Register stores a new user and returns a token for it
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return "", domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	wiseKey, err := s.crypto.Encrypt(in.WiseKey)
	if err != nil {
		return "", err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleGuest // Default role
	}

	user := domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Phone:     in.Phone,
		Password:  string(hash),
		Role:      role,
		IBAN:      strings.ToUpper(strings.ReplaceAll(in.IBAN, " ", "")),
		WiseKey:   wiseKey,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", domain.ErrEmailTaken // Lost a race with a concurrent registration
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")
	return utils.GenerateJWT(user.ID, s.jwtSecret, s.jwtTTL)
}

// Login checks the password and returns a token
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return utils.GenerateJWT(user.ID, s.jwtSecret, s.jwtTTL)
}

// Get loads a user by id
func (s *UserService) Get(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}
