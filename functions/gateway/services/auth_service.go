package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/villagehq/api/functions/gateway/helpers"
)

// Authentication is delegated to the hosted identity provider; the gateway
// only validates the bearer tokens it mints and lifts the claims we care
// about onto the request context.

type AuthServiceInterface interface {
	GetUser(ctx context.Context) (*helpers.UserInfo, error)
}

type AuthService struct{}

func NewAuthService() AuthServiceInterface {
	return &AuthService{}
}

type communityClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantId string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// GetUser returns the authenticated caller from the context, or an error when
// the request never carried a valid token.
func (s *AuthService) GetUser(ctx context.Context) (*helpers.UserInfo, error) {
	userInfo := GetUserInfo(ctx)
	if userInfo.Sub == "" {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	return &userInfo, nil
}

func ParseBearerToken(r *http.Request) (*helpers.UserInfo, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, fmt.Errorf("malformed Authorization header")
	}

	claims := &communityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("AUTH_JWT_SECRET")), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	role := claims.Role
	if role == "" {
		role = helpers.RoleResident
	}

	return &helpers.UserInfo{
		Sub:      claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     role,
		TenantId: claims.TenantId,
	}, nil
}

func WithUserInfo(ctx context.Context, userInfo helpers.UserInfo) context.Context {
	return context.WithValue(ctx, helpers.UserInfoKey, userInfo)
}

// GetUserInfo returns the caller from the context; the zero value means the
// request was anonymous.
func GetUserInfo(ctx context.Context) helpers.UserInfo {
	if userInfo, ok := ctx.Value(helpers.UserInfoKey).(helpers.UserInfo); ok {
		return userInfo
	}
	return helpers.UserInfo{}
}
