package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"tamaqBack/internal/models"
	"tamaqBack/internal/repositories"
	"tamaqBack/utils"

	"golang.org/x/crypto/bcrypt"
)

// Logger is the minimal logging surface shared by the services.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// SMSSender delivers a verification code to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) error
}

type UserService struct {
	Users  *repositories.UserRepository
	Tokens *utils.Manager
	SMS    SMSSender
	Logger Logger
}

const (
	refreshTokenTTL = 30 * 24 * time.Hour
	codeTTL         = 5 * time.Minute
)

func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	user.Phone = strings.TrimSpace(user.Phone)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Phone == "" && user.Email == "" {
		return models.User{}, fmt.Errorf("sign up: phone or email required")
	}
	if len(user.Password) < 6 {
		return models.User{}, fmt.Errorf("sign up: password too short")
	}
	if user.Role == "" {
		user.Role = "customer"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), 12)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hash)

	created, err := s.Users.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.Password = ""

	if created.Phone != "" && s.SMS != nil {
		if err := s.sendVerificationCode(ctx, created.Phone); err != nil {
			s.Logger.Errorf("send verification code to %s: %v", created.Phone, err)
		}
	}
	return created, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, models.Tokens, error) {
	var user models.User
	var err error
	switch {
	case req.Phone != "":
		user, err = s.Users.GetUserByPhone(ctx, req.Phone)
	case req.Email != "":
		user, err = s.Users.GetUserByEmail(ctx, strings.ToLower(req.Email))
	default:
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
		}
		return models.User{}, models.Tokens{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	user.Password = ""
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.Users.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	user, err := s.Users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	access, err := s.Tokens.NewJWT(user.ID, user.Role)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}
	if err := s.Users.SaveSession(ctx, session); err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) sendVerificationCode(ctx context.Context, phone string) error {
	code := fmt.Sprintf("%04d", rand.Intn(10000))
	if err := s.Users.SaveVerificationCode(ctx, phone, code, time.Now().Add(codeTTL)); err != nil {
		return err
	}
	return s.SMS.SendSMS(ctx, phone, fmt.Sprintf("Your confirmation code: %s", code))
}

func (s *UserService) VerifyCode(ctx context.Context, req models.VerifyCodeRequest) error {
	code, expiresAt, err := s.Users.GetVerificationCode(ctx, req.Phone)
	if err != nil {
		return err
	}
	if time.Now().After(expiresAt) || code != req.Code {
		return models.ErrInvalidCredentials
	}
	return s.Users.MarkVerified(ctx, req.Phone)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SaveDeviceToken(ctx context.Context, userID int64, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("save device token: empty token")
	}
	return s.Users.SaveDeviceToken(ctx, userID, token)
}
