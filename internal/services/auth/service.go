package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
)

// ReviewerDirectory is the mirrored staff account table. The platform
// IdP authenticates staff and syncs rows into it; login exchanges a
// directory row for a console token.
type ReviewerDirectory interface {
	GetByID(ctx context.Context, reviewerID string) (model.Reviewer, error)
}

type LoginResult struct {
	AccessToken   string
	AccessExpires time.Time
	Reviewer      model.Reviewer
}

type Service struct {
	jwt       *JWTManager
	directory ReviewerDirectory
}

func NewService(jwtManager *JWTManager, directory ReviewerDirectory) *Service {
	return &Service{jwt: jwtManager, directory: directory}
}

// Login issues a console access token for a staff account already
// authenticated by the platform gateway. Unknown reviewers get
// ErrUnauthorized.
func (s *Service) Login(ctx context.Context, reviewerID string) (LoginResult, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return LoginResult{}, ErrUnauthorized
	}

	reviewer, err := s.directory.GetByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, postgres.ErrReviewerNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, fmt.Errorf("lookup reviewer: %w", err)
	}
	if !reviewer.Role.Valid() {
		return LoginResult{}, ErrUnauthorized
	}

	token, expires, err := s.jwt.GenerateAccessToken(reviewer.ID, reviewer.Role, reviewer.DisplayName)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return LoginResult{
		AccessToken:   token,
		AccessExpires: expires,
		Reviewer:      reviewer,
	}, nil
}
