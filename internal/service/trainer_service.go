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

type trainerStore interface {
	Roster(ctx context.Context) ([]models.TrainerRosterEntry, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, trainer *models.Trainer) error
	Update(ctx context.Context, exec sqlx.ExtContext, oldID string, trainer *models.Trainer) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type trainerAssignmentWriter interface {
	CountByTrainer(ctx context.Context, exec sqlx.ExtContext, trainerID string) (int, error)
	RenameTrainer(ctx context.Context, exec sqlx.ExtContext, oldID, newID, newName string) (int64, error)
}

type trainerHoursWriter interface {
	RenameTrainer(ctx context.Context, exec sqlx.ExtContext, oldID, newID, newName string) (int64, error)
}

type hoursCacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// TrainerRequest carries trainer fields for create and update.
type TrainerRequest struct {
	TrainerID string `json:"trainer_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// TrainerService manages trainers and keeps both ledgers keyed to them.
type TrainerService struct {
	trainers    trainerStore
	assignments trainerAssignmentWriter
	hours       trainerHoursWriter
	cache       hoursCacheInvalidator
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTrainerService constructs a TrainerService. cache may be nil.
func NewTrainerService(
	trainers trainerStore,
	assignments trainerAssignmentWriter,
	hours trainerHoursWriter,
	cache hoursCacheInvalidator,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *TrainerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainerService{
		trainers:    trainers,
		assignments: assignments,
		hours:       hours,
		cache:       cache,
		tx:          tx,
		validator:   validate,
		logger:      logger,
	}
}

// Roster lists every trainer classified as Assigned or Not Assigned, in display order.
func (s *TrainerService) Roster(ctx context.Context) ([]models.TrainerRosterEntry, error) {
	entries, err := s.trainers.Roster(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list trainers")
	}
	for i := range entries {
		entries[i].Status = models.StatusFor(entries[i].AssignmentCount)
	}
	models.SortRoster(entries)
	return entries, nil
}

// Get returns one trainer.
func (s *TrainerService) Get(ctx context.Context, id string) (*models.Trainer, error) {
	trainer, err := s.trainers.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, internalError(err, "failed to load trainer")
	}
	return trainer, nil
}

// Create validates and inserts a trainer.
func (s *TrainerService) Create(ctx context.Context, req TrainerRequest) (*models.Trainer, error) {
	trainer, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	err = inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		exists, err := s.trainers.Exists(ctx, tx, trainer.ID)
		if err != nil {
			return internalError(err, "failed to check trainer id")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrDuplicateKey, "trainer "+trainer.ID+" already exists")
		}
		if err := s.trainers.Create(ctx, tx, trainer); err != nil {
			return internalError(err, "failed to create trainer")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "create trainer", zap.String("trainer_id", trainer.ID), err)
		return nil, err
	}

	s.logger.Info("trainer created", zap.String("trainer_id", trainer.ID))
	return trainer, nil
}

// Update rewrites the trainer stored under oldID and, in the same transaction,
// the trainer id and name snapshot on every assignment and hours record.
func (s *TrainerService) Update(ctx context.Context, oldID string, req TrainerRequest) (*models.Trainer, error) {
	trainer, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	err = inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.trainers.FindByIDForUpdate(ctx, tx, oldID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
			}
			return internalError(err, "failed to load trainer")
		}
		if trainer.ID != oldID {
			exists, err := s.trainers.Exists(ctx, tx, trainer.ID)
			if err != nil {
				return internalError(err, "failed to check trainer id")
			}
			if exists {
				return appErrors.Clone(appErrors.ErrDuplicateKey, "trainer "+trainer.ID+" already exists")
			}
		}

		if err := s.trainers.Update(ctx, tx, oldID, trainer); err != nil {
			return internalError(err, "failed to update trainer")
		}
		name := trainer.FullName()
		if _, err := s.assignments.RenameTrainer(ctx, tx, oldID, trainer.ID, name); err != nil {
			return internalError(err, "failed to update trainer assignments")
		}
		if _, err := s.hours.RenameTrainer(ctx, tx, oldID, trainer.ID, name); err != nil {
			return internalError(err, "failed to update trainer hours")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "update trainer", zap.String("trainer_id", oldID), err)
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateCache(ctx)
	}
	s.logger.Info("trainer updated", zap.String("trainer_id", trainer.ID), zap.String("previous_id", oldID))
	return trainer, nil
}

// Delete removes a trainer that no assignment references.
func (s *TrainerService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.trainers.FindByIDForUpdate(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
			}
			return internalError(err, "failed to load trainer")
		}
		count, err := s.assignments.CountByTrainer(ctx, tx, id)
		if err != nil {
			return internalError(err, "failed to count trainer assignments")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("This trainer has %d assignments and cannot be deleted", count))
		}
		if err := s.trainers.Delete(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete trainer")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "delete trainer", zap.String("trainer_id", id), err)
		return err
	}

	s.logger.Info("trainer deleted", zap.String("trainer_id", id))
	return nil
}

func (s *TrainerService) validate(req TrainerRequest) (*models.Trainer, error) {
	req.TrainerID = strings.TrimSpace(req.TrainerID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid trainer payload")
	}
	return &models.Trainer{ID: req.TrainerID, FirstName: req.FirstName, LastName: req.LastName}, nil
}
