// Package auth resolves bearer credentials to identities and checks roles.
package auth

import (
	"context"
	"errors"
	"strings"

	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Gate authenticates requests. It keeps no state between calls: every
// request re-verifies the token and re-reads the identity.
type Gate struct {
	Users  userRepo.UserRepository
	Tokens *utils.JWTIssuer
	Logger *zap.Logger
}

func NewGate(users userRepo.UserRepository, tokens *utils.JWTIssuer, logger *zap.Logger) *Gate {
	return &Gate{Users: users, Tokens: tokens, Logger: logger}
}

// ExtractBearer returns the token of a "Bearer <token>" header.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", utils.NewError(utils.KindMissingCredential, "Access denied. No token provided.")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", utils.NewError(utils.KindMissingCredential, "Access denied. No token provided.")
	}
	return token, nil
}

// Authenticate verifies the bearer credential in header and resolves its
// subject to a live identity. The returned user never carries a password hash.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, err := ExtractBearer(header)
	if err != nil {
		return nil, err
	}

	subject, err := g.Tokens.Verify(token)
	if err != nil {
		msg := "Invalid token."
		if errors.Is(err, utils.ErrTokenExpired) {
			msg = "Token expired"
		}
		return nil, utils.WrapError(utils.KindInvalidCredential, msg, err)
	}

	user, err := g.Users.GetByID(ctx, subject)
	if err != nil {
		g.Logger.Error("identity lookup failed", zap.String("subject", subject), zap.Error(err))
		return nil, utils.InternalError("identity lookup failed", err)
	}
	if user == nil || !user.IsActive {
		return nil, utils.NewError(utils.KindInvalidCredential, "Invalid token.")
	}
	user.PasswordHash = ""
	return user, nil
}
