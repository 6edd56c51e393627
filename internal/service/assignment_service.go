package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type assignmentStore interface {
	List(ctx context.Context) ([]models.Assignment, error)
	FindByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.Assignment, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error
	DeleteByKey(ctx context.Context, exec sqlx.ExtContext, key models.AssignmentKey) ([]models.Assignment, error)
}

type hoursLedger interface {
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.HoursRecord) error
	ListForUpdate(ctx context.Context, exec sqlx.ExtContext, trainerID, date string) ([]models.HoursRecord, error)
	SetMinutes(ctx context.Context, exec sqlx.ExtContext, recordID int64, minutes int) error
	DeleteDepleted(ctx context.Context, exec sqlx.ExtContext, trainerID, date string) (int64, error)
}

type assignmentClassReader interface {
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
}

type assignmentTrainerReader interface {
	FindByIDForShare(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error)
}

// AssignRequest asks for a trainer to cover a class.
type AssignRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	TrainerID string `json:"trainer_id" validate:"required"`
}

// AssignmentService keeps the assignment and hours ledgers in lock-step.
type AssignmentService struct {
	assignments assignmentStore
	hours       hoursLedger
	classes     assignmentClassReader
	trainers    assignmentTrainerReader
	cache       hoursCacheInvalidator
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService. cache may be nil.
func NewAssignmentService(
	assignments assignmentStore,
	hours hoursLedger,
	classes assignmentClassReader,
	trainers assignmentTrainerReader,
	cache hoursCacheInvalidator,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		hours:       hours,
		classes:     classes,
		trainers:    trainers,
		cache:       cache,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns every assignment, oldest first.
func (s *AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list assignments")
	}
	return assignments, nil
}

// Assign puts a trainer on a class and books the class duration into the
// trainer's hours. A class holds at most one assignment: the lookup runs with
// the class row locked, so two callers cannot both pass it. The trainer row is
// share-locked so a concurrent trainer delete waits for the assignment.
func (s *AssignmentService) Assign(ctx context.Context, req AssignRequest) (*models.Assignment, error) {
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.TrainerID = strings.TrimSpace(req.TrainerID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid assignment payload")
	}

	var assignment *models.Assignment
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		class, err := s.classes.FindByIDForUpdate(ctx, tx, req.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return internalError(err, "failed to load class")
		}
		trainer, err := s.trainers.FindByIDForShare(ctx, tx, req.TrainerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
			}
			return internalError(err, "failed to load trainer")
		}

		existing, err := s.assignments.FindByClass(ctx, tx, class.ID)
		switch {
		case err == nil:
			return appErrors.Clone(appErrors.ErrAlreadyAssigned, "class already has "+existing.TrainerName+" assigned")
		case !errors.Is(err, sql.ErrNoRows):
			return internalError(err, "failed to look up class assignment")
		}

		minutes, err := parseDurationMinutes(class.Duration)
		if err != nil {
			return err
		}

		assignment = &models.Assignment{
			ClassID:         class.ID,
			ClassName:       class.Name,
			TrainerID:       trainer.ID,
			TrainerName:     trainer.FullName(),
			Date:            class.Date,
			DurationMinutes: minutes,
			AssignmentDate:  s.now().Format(models.AssignmentDateLayout),
		}
		if err := s.assignments.Create(ctx, tx, assignment); err != nil {
			return internalError(err, "failed to create assignment")
		}
		record := &models.HoursRecord{
			TrainerID:     trainer.ID,
			TrainerName:   assignment.TrainerName,
			Date:          class.Date,
			MinutesWorked: minutes,
		}
		if err := s.hours.Create(ctx, tx, record); err != nil {
			return internalError(err, "failed to record trainer hours")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "assign trainer", zap.String("class_id", req.ClassID), err)
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("trainer assigned",
		zap.String("class_id", assignment.ClassID),
		zap.String("trainer_id", assignment.TrainerID),
		zap.Int("minutes", assignment.DurationMinutes))
	return assignment, nil
}

// Unassign removes the assignments matching key and takes their minutes back
// out of the trainer's hours for that date. Hours rows left at zero or below
// are deleted.
func (s *AssignmentService) Unassign(ctx context.Context, key models.AssignmentKey) ([]models.Assignment, error) {
	key.ClassID = strings.TrimSpace(key.ClassID)
	key.TrainerID = strings.TrimSpace(key.TrainerID)
	key.Date = strings.TrimSpace(key.Date)
	if err := s.validator.Struct(key); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid assignment key")
	}

	var removed []models.Assignment
	err := inTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		var err error
		removed, err = s.assignments.DeleteByKey(ctx, tx, key)
		if err != nil {
			return internalError(err, "failed to delete assignment")
		}
		if len(removed) == 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}

		records, err := s.hours.ListForUpdate(ctx, tx, key.TrainerID, key.Date)
		if err != nil {
			return internalError(err, "failed to load trainer hours")
		}
		changed := map[int64]bool{}
		for _, assignment := range removed {
			var unmatched int
			records, unmatched = retractMinutes(records, assignment.DurationMinutes, changed)
			if unmatched > 0 {
				s.logger.Warn("hours ledger short of unassigned minutes",
					zap.String("trainer_id", key.TrainerID),
					zap.String("date", key.Date),
					zap.Int("minutes", unmatched))
			}
		}
		for _, record := range records {
			if !changed[record.ID] {
				continue
			}
			if err := s.hours.SetMinutes(ctx, tx, record.ID, record.MinutesWorked); err != nil {
				return internalError(err, "failed to adjust trainer hours")
			}
		}
		if _, err := s.hours.DeleteDepleted(ctx, tx, key.TrainerID, key.Date); err != nil {
			return internalError(err, "failed to remove depleted trainer hours")
		}
		return nil
	})
	if err != nil {
		logFailure(s.logger, "unassign trainer", zap.String("class_id", key.ClassID), err)
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("trainer unassigned",
		zap.String("class_id", key.ClassID),
		zap.String("trainer_id", key.TrainerID),
		zap.Int("assignments", len(removed)))
	return removed, nil
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateCache(ctx)
	}
}

// retractMinutes takes minutes out of records so that their sum drops by
// exactly that amount. A record holding exactly minutes is emptied first;
// otherwise records are drained oldest first. It marks touched record ids in
// changed and returns how many minutes had no record to come out of.
func retractMinutes(records []models.HoursRecord, minutes int, changed map[int64]bool) ([]models.HoursRecord, int) {
	for i := range records {
		if records[i].MinutesWorked == minutes {
			records[i].MinutesWorked = 0
			changed[records[i].ID] = true
			return records, 0
		}
	}

	remaining := minutes
	for i := range records {
		if remaining == 0 {
			break
		}
		if records[i].MinutesWorked <= 0 {
			continue
		}
		take := records[i].MinutesWorked
		if take > remaining {
			take = remaining
		}
		records[i].MinutesWorked -= take
		remaining -= take
		changed[records[i].ID] = true
	}
	return records, remaining
}
