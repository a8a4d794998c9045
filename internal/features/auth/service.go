package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-docflow/internal/common/models"
	"go-docflow/internal/features/user"
	"go-docflow/pkg/apperrors"
	"go-docflow/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, orgID string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
}

func NewAuthService(userRepo user.UserRepository) AuthService {
	return &AuthServiceImpl{UserRepo: userRepo}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email, orgID string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	existing, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Password:  string(hashed),
		Email:     email,
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if orgID != "" {
		oid, err := primitive.ObjectIDFromHex(orgID)
		if err != nil {
			return nil, errors.New("invalid organization id")
		}
		newUser.OrgID = &oid
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	found, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if found == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	return utils.GenerateToken(found.ID, found.IsAdmin)
}

func (s *AuthServiceImpl) Profile(ctx context.Context, userID string) (*models.User, error) {
	found, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	found.Password = ""
	return found, nil
}
