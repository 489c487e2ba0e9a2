package user

import (
	"context"
	"errors"
	"strings"

	"shopmart-be/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IP       string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx)

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashed,
		Role:     RoleUser,
		IP:       input.IP,
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		log.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
		return "", nil, err
	}

	token, err := GenerateJWT(created.ID.Hex(), string(created.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", created.ID.Hex()), zap.Error(err))
		return "", nil, err
	}

	log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("email", created.Email),
	)

	return token, created, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("login failed: email not found")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("login failed: user lookup", zap.Error(err))
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Warn("login failed: password mismatch", zap.String("user_id", u.ID.Hex()))
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID.Hex(), string(u.Role))
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

func (s *service) GetProfile(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}
