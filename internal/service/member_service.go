package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type memberReader interface {
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error)
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

// MemberService exposes read access to members. Member ids are never renamed.
type MemberService struct {
	members memberReader
	logger  *zap.Logger
}

// NewMemberService constructs a MemberService.
func NewMemberService(members memberReader, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{members: members, logger: logger}
}

// List returns a page of members.
func (s *MemberService) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	members, total, err := s.members.List(ctx, filter)
	if err != nil {
		s.logger.Error("list members failed", zap.Error(err))
		return nil, nil, internalError(err, "failed to list members")
	}
	return members, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one member.
func (s *MemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, internalError(err, "failed to load member")
	}
	return member, nil
}
