package user

import (
	"context"
	"strings"

	"github.com/yungbote/baseapi-backend/internal/data/criteria"
	"github.com/yungbote/baseapi-backend/internal/data/repos/generic"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

// UserRepo is the generic user repository plus identity lookups. Users are
// hard-deletable, so Delete stages physical removal.
type UserRepo struct {
	*generic.Repository[types.User, *types.User]
}

func NewUserRepo(sess *session.Session, baseLog *logger.Logger) *UserRepo {
	return &UserRepo{Repository: generic.MustNew[types.User](sess, baseLog.With("repo", "UserRepo"))}
}

// GetByUserName returns the user or nil when none matches.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (*types.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, aggregates.ValidationError("user_repo.get_by_user_name", "user name is required")
	}
	return r.SingleOrDefault(ctx, criteria.Eq("user_name", userName))
}

// GetByEmail returns the user or nil when none matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, aggregates.ValidationError("user_repo.get_by_email", "email is required")
	}
	return r.SingleOrDefault(ctx, criteria.Eq("email", email))
}

func (r *UserRepo) UserNameExists(ctx context.Context, userName string) (bool, error) {
	n, err := r.CountWhere(ctx, criteria.Eq("user_name", strings.TrimSpace(userName)))
	return n > 0, err
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.CountWhere(ctx, criteria.Eq("email", strings.TrimSpace(email)))
	return n > 0, err
}
