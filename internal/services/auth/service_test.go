package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
)

type fakeDirectory struct {
	reviewers map[string]model.Reviewer
}

func (f *fakeDirectory) GetByID(_ context.Context, reviewerID string) (model.Reviewer, error) {
	reviewer, ok := f.reviewers[reviewerID]
	if !ok {
		return model.Reviewer{}, postgres.ErrReviewerNotFound
	}
	return reviewer, nil
}

func TestLoginIssuesTokenForKnownReviewer(t *testing.T) {
	directory := &fakeDirectory{reviewers: map[string]model.Reviewer{
		"rev-1": {ID: "rev-1", DisplayName: "Ana", Role: enums.RoleSupport},
	}}
	jwtManager := NewJWTManager("test-secret", time.Hour)
	svc := NewService(jwtManager, directory)

	res, err := svc.Login(context.Background(), "rev-1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected a non-empty access token")
	}
	if res.Reviewer.DisplayName != "Ana" {
		t.Fatalf("expected reviewer profile, got %+v", res.Reviewer)
	}

	claims, err := jwtManager.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.ReviewerID != "rev-1" || claims.Role != enums.RoleSupport {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsUnknownReviewer(t *testing.T) {
	svc := NewService(NewJWTManager("test-secret", time.Hour), &fakeDirectory{reviewers: map[string]model.Reviewer{}})

	if _, err := svc.Login(context.Background(), "ghost"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginRejectsEmptyReviewerID(t *testing.T) {
	svc := NewService(NewJWTManager("test-secret", time.Hour), &fakeDirectory{})

	if _, err := svc.Login(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
