package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	provider AuthProvider
	secret   string
}

type AuthProvider interface {
	SaveUser(ctx context.Context, passHash string, user domains.UserCreate) (domains.User, error)
	GetUserByEmail(ctx context.Context, email string) (domains.User, error)
	GetUserByID(ctx context.Context, id int64) (domains.User, error)
}

func NewAuthService(provider AuthProvider, secret string) *AuthService {
	return &AuthService{
		provider: provider,
		secret:   secret,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.provider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", PasswordIncorrect
		}
		slog.Error("fetch user failed", "err", err)
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", PasswordIncorrect
	}

	return s.GenerateTokens(user)
}

// Register creates a user. The actor caps the granted role: nobody may
// assign a role above their own, and an unauthenticated self-registration
// (zero actor) only ever yields a plain user.
func (s *AuthService) Register(ctx context.Context, actor domains.Actor, userData domains.UserCreate) (domains.User, error) {
	role := userData.Role
	if role == "" {
		role = domains.RoleUser
	}
	if !role.Valid() {
		return domains.User{}, NewValidationError("invalid role %q", string(role))
	}
	if role != domains.RoleUser {
		if !actor.Role.CanAssign(role) {
			return domains.User{}, fmt.Errorf("assign role %s: %w", role, ErrForbidden)
		}
		if userData.CompanyID != nil && !actor.CoversCompany(*userData.CompanyID) {
			return domains.User{}, fmt.Errorf("assign company scope: %w", ErrForbidden)
		}
	}
	userData.Role = role

	passHash, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hash password failed", "err", err)
		return domains.User{}, err
	}

	user, err := s.provider.SaveUser(ctx, string(passHash), userData)
	if err != nil {
		if errors.Is(err, storage.ErrUserExist) {
			return domains.User{}, storage.ErrUserExist
		}
		slog.Error("save user failed", "err", err)
		return domains.User{}, err
	}
	return user, nil
}

func (s *AuthService) GenerateTokens(user domains.User) (accessToken string, refreshToken string, err error) {
	accessExpiration := time.Now().Add(15 * time.Minute)
	refreshExpiration := time.Now().Add(7 * 24 * time.Hour)

	accessClaims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"exp":  accessExpiration.Unix(),
		"type": "access",
	}
	if user.CompanyID != nil {
		accessClaims["company_id"] = *user.CompanyID
	}
	if user.SiteID != nil {
		accessClaims["site_id"] = *user.SiteID
	}
	if user.DepartmentID != nil {
		accessClaims["department_id"] = *user.DepartmentID
	}
	accessJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err = accessJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"exp":  refreshExpiration.Unix(),
		"type": "refresh",
	}
	refreshJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err = refreshJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sub, claims, err := s.validateAndGetSubByToken(refreshToken)
	if err != nil {
		return "", "", TokenIncorrect
	}
	if claims["type"] != "refresh" {
		return "", "", TokenIncorrect
	}

	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		return "", "", err
	}
	return s.GenerateTokens(user)
}

func (s *AuthService) Me(ctx context.Context, token string) (domains.User, error) {
	sub, _, err := s.validateAndGetSubByToken(token)
	if err != nil {
		return domains.User{}, TokenIncorrect
	}
	return s.provider.GetUserByID(ctx, sub)
}

func (s *AuthService) validateAndGetSubByToken(initToken string) (int64, jwt.MapClaims, error) {
	token, err := jwt.Parse(initToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, nil, errors.New("invalid claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, nil, errors.New("subject missing")
	}
	uid, err := strconv.ParseInt(subStr, 10, 64)
	if err != nil {
		return 0, nil, errors.New("subject malformed")
	}
	return uid, claims, nil
}
