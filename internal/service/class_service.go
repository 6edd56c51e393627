package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type classStore interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
	Update(ctx context.Context, exec sqlx.ExtContext, oldID string, class *models.Class) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type classEnrollmentWriter interface {
	CountByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error)
	RenameClass(ctx context.Context, exec sqlx.ExtContext, oldID, newID string) (int64, error)
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int64, error)
}

// ClassRequest carries the fields of a class for create and update.
type ClassRequest struct {
	ClassID         string `json:"class_id" validate:"required"`
	ClassName       string `json:"class_name" validate:"required"`
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time" validate:"required"`
	Duration        string `json:"duration" validate:"required"`
	Capacity        *int   `json:"capacity" validate:"required,gte=0"`
	DifficultyLevel string `json:"difficulty_level" validate:"required"`
}

func (r *ClassRequest) normalize() {
	r.ClassID = strings.TrimSpace(r.ClassID)
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Duration = strings.TrimSpace(r.Duration)
	r.DifficultyLevel = strings.TrimSpace(r.DifficultyLevel)
}

func (r ClassRequest) toModel() *models.Class {
	return &models.Class{
		ID:              r.ClassID,
		Name:            r.ClassName,
		Date:            r.Date,
		Time:            r.Time,
		Duration:        r.Duration,
		Capacity:        *r.Capacity,
		DifficultyLevel: r.DifficultyLevel,
	}
}

// ClassService manages the class catalog and keeps signups keyed to it.
type ClassService struct {
	classes     classStore
	enrollments classEnrollmentWriter
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(classes classStore, enrollments classEnrollmentWriter, tx txProvider, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, enrollments: enrollments, tx: tx, validator: validate, logger: logger}
}

// List returns every class.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list classes")
	}
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	return class, nil
}

// Create validates and inserts a class.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.Class, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid class payload")
	}

	class := req.toModel()
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		exists, err := s.classes.Exists(ctx, tx, class.ID)
		if err != nil {
			return internalError(err, "failed to check class id")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrDuplicateKey, "class "+class.ID+" already exists")
		}
		if err := s.classes.Create(ctx, tx, class); err != nil {
			return internalError(err, "failed to create class")
		}
		return nil
	})
	if err != nil {
		s.logFailure("create class", class.ID, err)
		return nil, err
	}

	s.logger.Info("class created", zap.String("class_id", class.ID))
	return class, nil
}

// Update rewrites the class stored under oldID. When the id changes every
// signup is moved to the new id in the same transaction. Capacity may not drop
// below the signups already taken. Assignments keep the class id they were
// made with, so after a rename the new id accepts a fresh assignment.
func (s *ClassService) Update(ctx context.Context, oldID string, req ClassRequest) (*models.Class, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid class payload")
	}

	class := req.toModel()
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.classes.FindByIDForUpdate(ctx, tx, oldID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return internalError(err, "failed to load class")
		}

		enrolled, err := s.enrollments.CountByClass(ctx, tx, oldID)
		if err != nil {
			return internalError(err, "failed to count class enrollments")
		}
		if class.Capacity < enrolled {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("class %s has %d signups, capacity cannot be set to %d", oldID, enrolled, class.Capacity))
		}

		renamed := class.ID != oldID
		if renamed {
			exists, err := s.classes.Exists(ctx, tx, class.ID)
			if err != nil {
				return internalError(err, "failed to check class id")
			}
			if exists {
				return appErrors.Clone(appErrors.ErrDuplicateKey, "class "+class.ID+" already exists")
			}
		}

		if err := s.classes.Update(ctx, tx, oldID, class); err != nil {
			return internalError(err, "failed to update class")
		}
		if renamed {
			moved, err := s.enrollments.RenameClass(ctx, tx, oldID, class.ID)
			if err != nil {
				return internalError(err, "failed to move class enrollments")
			}
			s.logger.Debug("class enrollments re-keyed", zap.String("from", oldID), zap.String("to", class.ID), zap.Int64("rows", moved))
		}
		return nil
	})
	if err != nil {
		s.logFailure("update class", oldID, err)
		return nil, err
	}

	s.logger.Info("class updated", zap.String("class_id", class.ID), zap.String("previous_id", oldID))
	return class, nil
}

// Delete removes a class together with its signups.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.classes.FindByIDForUpdate(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return internalError(err, "failed to load class")
		}
		if _, err := s.enrollments.DeleteByClass(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete class enrollments")
		}
		if err := s.classes.Delete(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete class")
		}
		return nil
	})
	if err != nil {
		s.logFailure("delete class", id, err)
		return err
	}

	s.logger.Info("class deleted", zap.String("class_id", id))
	return nil
}

func (s *ClassService) logFailure(op, id string, err error) {
	logFailure(s.logger, op, zap.String("class_id", id), err)
}

// logFailure logs business rejections at info and storage failures at error.
func logFailure(logger *zap.Logger, op string, field zap.Field, err error) {
	if appErrors.IsKind(err, appErrors.ErrInternal) {
		logger.Error(op+" failed", field, zap.Error(err))
		return
	}
	logger.Info(op+" rejected", field, zap.String("reason", appErrors.FromError(err).Message))
}
