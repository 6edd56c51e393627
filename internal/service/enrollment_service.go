package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type enrollmentStore interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, memberID, classID string) (bool, error)
	CountByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
	Availability(ctx context.Context, classID string) ([]models.ClassAvailability, error)
}

type enrollmentClassReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
}

type enrollmentMemberChecker interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

// SignupRequest asks for a member to join a class.
type SignupRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	ClassID  string `json:"class_id" validate:"required"`
}

// EnrollmentService books members into capacity-limited classes.
type EnrollmentService struct {
	enrollments enrollmentStore
	classes     enrollmentClassReader
	members     enrollmentMemberChecker
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(
	enrollments enrollmentStore,
	classes enrollmentClassReader,
	members enrollmentMemberChecker,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		classes:     classes,
		members:     members,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Signup books a member into a class. Checks run in order member, class,
// duplicate, capacity and the first failure is returned. The class row stays
// locked from the capacity count until the insert commits.
func (s *EnrollmentService) Signup(ctx context.Context, req SignupRequest) (*models.Enrollment, error) {
	req.MemberID = strings.TrimSpace(req.MemberID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid signup payload")
	}

	enrollment := &models.Enrollment{MemberID: req.MemberID, ClassID: req.ClassID}
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		memberExists, err := s.members.Exists(ctx, tx, req.MemberID)
		if err != nil {
			return internalError(err, "failed to load member")
		}
		if !memberExists {
			return appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}

		class, err := s.classes.FindByIDForUpdate(ctx, tx, req.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return internalError(err, "failed to load class")
		}

		duplicate, err := s.enrollments.Exists(ctx, tx, req.MemberID, req.ClassID)
		if err != nil {
			return internalError(err, "failed to check enrollment")
		}
		if duplicate {
			return appErrors.Clone(appErrors.ErrDuplicateSignup, "You are already signed up for this class")
		}

		enrolled, err := s.enrollments.CountByClass(ctx, tx, req.ClassID)
		if err != nil {
			return internalError(err, "failed to count enrollments")
		}
		if enrolled >= class.Capacity {
			return appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("class %s is full (%d/%d)", class.ID, enrolled, class.Capacity))
		}

		enrollment.SignupDate = s.now().Format(models.SignupDateLayout)
		if err := s.enrollments.Create(ctx, tx, enrollment); err != nil {
			return internalError(err, "failed to create enrollment")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "signup", zap.String("class_id", req.ClassID), err)
		return nil, err
	}

	s.logger.Info("member signed up", zap.String("member_id", enrollment.MemberID), zap.String("class_id", enrollment.ClassID))
	return enrollment, nil
}

// ListByClass returns the signups of an existing class.
func (s *EnrollmentService) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	if _, err := s.classes.FindByID(ctx, nil, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	enrollments, err := s.enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListAvailability recomputes remaining places from the signup count on every
// call. An empty classID reports every class. A negative result means the
// ledger broke its capacity invariant and is reported as an internal error.
func (s *EnrollmentService) ListAvailability(ctx context.Context, classID string) ([]models.ClassAvailability, error) {
	classID = strings.TrimSpace(classID)
	items, err := s.enrollments.Availability(ctx, classID)
	if err != nil {
		return nil, internalError(err, "failed to compute availability")
	}
	if classID != "" && len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	for _, item := range items {
		if item.Available < 0 {
			s.logger.Error("class over capacity",
				zap.String("class_id", item.ClassID),
				zap.Int("capacity", item.Capacity),
				zap.Int("enrolled", item.Enrolled))
			return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("class %s holds more signups than its capacity", item.ClassID))
		}
	}
	return items, nil
}
