package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/ctxutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

// AuthService validates bearer tokens and binds the caller's identity to the
// request context.
type AuthService interface {
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type authService struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthService(log *logger.Logger) (AuthService, error) {
	secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		return nil, fmt.Errorf("missing AUTH_JWT_SECRET")
	}
	return &authService{
		log:    log.With("service", "AuthService"),
		secret: []byte(secret),
	}, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: sub}), nil
}
