package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"maps"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// memTxLog backs a txProvider whose transactions act on a memStore: Begin
// snapshots the store, Rollback restores the snapshot.
type memTxLog struct {
	store     *memStore
	saved     *memStore
	commits   int
	rollbacks int
}

func newMemTxProvider(t *testing.T, store *memStore) (txProvider, *memTxLog) {
	log := &memTxLog{store: store}
	db := sql.OpenDB(memTxConnector{log: log})
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "memtx"), log
}

type memTxConnector struct{ log *memTxLog }

func (c memTxConnector) Connect(context.Context) (driver.Conn, error) { return memTxConn(c), nil }
func (c memTxConnector) Driver() driver.Driver { return memTxDriver(c) }

type memTxDriver struct{ log *memTxLog }

func (d memTxDriver) Open(string) (driver.Conn, error) { return memTxConn(d), nil }

type memTxConn struct{ log *memTxLog }

func (c memTxConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("memtx: statements are not supported")
}
func (c memTxConn) Close() error { return nil }
func (c memTxConn) Begin() (driver.Tx, error) {
	c.log.saved = c.log.store.clone()
	return memTx(c), nil
}

type memTx struct{ log *memTxLog }

func (t memTx) Commit() error {
	t.log.commits++
	t.log.saved = nil
	return nil
}

func (t memTx) Rollback() error {
	t.log.rollbacks++
	if t.log.saved != nil {
		t.log.store.restore(t.log.saved)
		t.log.saved = nil
	}
	return nil
}

var fixedNow = time.Date(2025, 6, 3, 7, 5, 9, 0, time.UTC)

// memStore is an in-memory stand-in for every repository. failures maps an
// operation name such as "hours.Create" to the error it should return.
type memStore struct {
	classes     map[string]models.Class
	trainers    map[string]models.Trainer
	members     map[string]models.Member
	enrollments []models.Enrollment
	assignments []models.Assignment
	hours       []models.HoursRecord
	nextID      int64
	failures    map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		classes:  map[string]models.Class{},
		trainers: map[string]models.Trainer{},
		members:  map[string]models.Member{},
		failures: map[string]error{},
	}
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) clone() *memStore {
	c := *s
	c.classes = maps.Clone(s.classes)
	c.trainers = maps.Clone(s.trainers)
	c.members = maps.Clone(s.members)
	c.enrollments = append([]models.Enrollment(nil), s.enrollments...)
	c.assignments = append([]models.Assignment(nil), s.assignments...)
	c.hours = append([]models.HoursRecord(nil), s.hours...)
	return &c
}

// restore puts back the rows of saved. Injected failures are left alone.
func (s *memStore) restore(saved *memStore) {
	failures := s.failures
	*s = *saved
	s.failures = failures
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addClass(id string, capacity int, duration string) {
	s.classes[id] = models.Class{ID: id, Name: "Class " + id, Date: "03/06/2025", Time: "7:30am", Duration: duration, Capacity: capacity, DifficultyLevel: "Beginner"}
}

func (s *memStore) addTrainer(id, first, last string) {
	s.trainers[id] = models.Trainer{ID: id, FirstName: first, LastName: last}
}

func (s *memStore) addMember(id string) {
	s.members[id] = models.Member{ID: id, Username: strings.ToLower(id)}
}

func (s *memStore) minutesFor(trainerID string) (hours int, assigned int) {
	for _, r := range s.hours {
		if r.TrainerID == trainerID {
			hours += r.MinutesWorked
		}
	}
	for _, a := range s.assignments {
		if a.TrainerID == trainerID {
			assigned += a.DurationMinutes
		}
	}
	return hours, assigned
}

type memClasses struct{ *memStore }

func (r memClasses) List(ctx context.Context) ([]models.Class, error) {
	if err := r.fail("classes.List"); err != nil {
		return nil, err
	}
	out := make([]models.Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memClasses) FindByID(ctx context.Context, _ sqlx.ExtContext, id string) (*models.Class, error) {
	if err := r.fail("classes.FindByID"); err != nil {
		return nil, err
	}
	c, ok := r.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r memClasses) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	return r.FindByID(ctx, exec, id)
}

func (r memClasses) Exists(ctx context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	_, ok := r.classes[id]
	return ok, nil
}

func (r memClasses) Create(ctx context.Context, _ sqlx.ExtContext, class *models.Class) error {
	if err := r.fail("classes.Create"); err != nil {
		return err
	}
	r.classes[class.ID] = *class
	return nil
}

func (r memClasses) Update(ctx context.Context, _ sqlx.ExtContext, oldID string, class *models.Class) error {
	if err := r.fail("classes.Update"); err != nil {
		return err
	}
	if _, ok := r.classes[oldID]; !ok {
		return sql.ErrNoRows
	}
	delete(r.classes, oldID)
	r.classes[class.ID] = *class
	return nil
}

func (r memClasses) Delete(ctx context.Context, _ sqlx.ExtContext, id string) error {
	if err := r.fail("classes.Delete"); err != nil {
		return err
	}
	delete(r.classes, id)
	return nil
}

type memTrainers struct{ *memStore }

func (r memTrainers) Roster(ctx context.Context) ([]models.TrainerRosterEntry, error) {
	out := make([]models.TrainerRosterEntry, 0, len(r.trainers))
	for _, t := range r.trainers {
		count := 0
		for _, a := range r.assignments {
			if a.TrainerID == t.ID {
				count++
			}
		}
		out = append(out, models.TrainerRosterEntry{Trainer: t, AssignmentCount: count})
	}
	return out, nil
}

func (r memTrainers) FindByID(ctx context.Context, _ sqlx.ExtContext, id string) (*models.Trainer, error) {
	t, ok := r.trainers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r memTrainers) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error) {
	return r.FindByID(ctx, exec, id)
}

func (r memTrainers) FindByIDForShare(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error) {
	if err := r.fail("trainers.FindByIDForShare"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, exec, id)
}

func (r memTrainers) Exists(ctx context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	_, ok := r.trainers[id]
	return ok, nil
}

func (r memTrainers) Create(ctx context.Context, _ sqlx.ExtContext, trainer *models.Trainer) error {
	r.trainers[trainer.ID] = *trainer
	return nil
}

func (r memTrainers) Update(ctx context.Context, _ sqlx.ExtContext, oldID string, trainer *models.Trainer) error {
	delete(r.trainers, oldID)
	r.trainers[trainer.ID] = *trainer
	return nil
}

func (r memTrainers) Delete(ctx context.Context, _ sqlx.ExtContext, id string) error {
	delete(r.trainers, id)
	return nil
}

type memMembers struct{ *memStore }

func (r memMembers) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	if err := r.fail("members.List"); err != nil {
		return nil, 0, err
	}
	out := make([]models.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, len(out), nil
}

func (r memMembers) FindByID(ctx context.Context, id string) (*models.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r memMembers) Exists(ctx context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	_, ok := r.members[id]
	return ok, nil
}

type memEnrollments struct{ *memStore }

func (r memEnrollments) Exists(ctx context.Context, _ sqlx.ExtContext, memberID, classID string) (bool, error) {
	for _, e := range r.enrollments {
		if e.MemberID == memberID && e.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (r memEnrollments) CountByClass(ctx context.Context, _ sqlx.ExtContext, classID string) (int, error) {
	count := 0
	for _, e := range r.enrollments {
		if e.ClassID == classID {
			count++
		}
	}
	return count, nil
}

func (r memEnrollments) Create(ctx context.Context, _ sqlx.ExtContext, enrollment *models.Enrollment) error {
	if err := r.fail("enrollments.Create"); err != nil {
		return err
	}
	r.memStore.enrollments = append(r.memStore.enrollments, *enrollment)
	return nil
}

func (r memEnrollments) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range r.enrollments {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEnrollments) RenameClass(ctx context.Context, _ sqlx.ExtContext, oldID, newID string) (int64, error) {
	if err := r.fail("enrollments.RenameClass"); err != nil {
		return 0, err
	}
	var moved int64
	for i := range r.enrollments {
		if r.enrollments[i].ClassID == oldID {
			r.enrollments[i].ClassID = newID
			moved++
		}
	}
	return moved, nil
}

func (r memEnrollments) DeleteByClass(ctx context.Context, _ sqlx.ExtContext, classID string) (int64, error) {
	if err := r.fail("enrollments.DeleteByClass"); err != nil {
		return 0, err
	}
	kept := r.enrollments[:0]
	var removed int64
	for _, e := range r.enrollments {
		if e.ClassID == classID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.memStore.enrollments = kept
	return removed, nil
}

func (r memEnrollments) Availability(ctx context.Context, classID string) ([]models.ClassAvailability, error) {
	classes, _ := memClasses{r.memStore}.List(ctx)
	var out []models.ClassAvailability
	for _, c := range classes {
		if classID != "" && c.ID != classID {
			continue
		}
		enrolled, _ := r.CountByClass(ctx, nil, c.ID)
		out = append(out, models.ClassAvailability{
			ClassID: c.ID, ClassName: c.Name, Date: c.Date, Time: c.Time,
			Capacity: c.Capacity, Enrolled: enrolled, Available: c.Capacity - enrolled,
		})
	}
	return out, nil
}

type memAssignments struct{ *memStore }

func (r memAssignments) List(ctx context.Context) ([]models.Assignment, error) {
	return append([]models.Assignment(nil), r.assignments...), nil
}

func (r memAssignments) FindByClass(ctx context.Context, _ sqlx.ExtContext, classID string) (*models.Assignment, error) {
	if err := r.fail("assignments.FindByClass"); err != nil {
		return nil, err
	}
	for _, a := range r.assignments {
		if a.ClassID == classID {
			a := a
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memAssignments) Create(ctx context.Context, _ sqlx.ExtContext, assignment *models.Assignment) error {
	assignment.ID = r.id()
	r.memStore.assignments = append(r.memStore.assignments, *assignment)
	return nil
}

func (r memAssignments) DeleteByKey(ctx context.Context, _ sqlx.ExtContext, key models.AssignmentKey) ([]models.Assignment, error) {
	var kept, removed []models.Assignment
	for _, a := range r.assignments {
		if a.ClassID == key.ClassID && a.TrainerID == key.TrainerID && a.Date == key.Date {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	r.memStore.assignments = kept
	return removed, nil
}

func (r memAssignments) CountByTrainer(ctx context.Context, _ sqlx.ExtContext, trainerID string) (int, error) {
	count := 0
	for _, a := range r.assignments {
		if a.TrainerID == trainerID {
			count++
		}
	}
	return count, nil
}

func (r memAssignments) RenameTrainer(ctx context.Context, _ sqlx.ExtContext, oldID, newID, newName string) (int64, error) {
	if err := r.fail("assignments.RenameTrainer"); err != nil {
		return 0, err
	}
	var n int64
	for i := range r.assignments {
		if r.assignments[i].TrainerID == oldID {
			r.assignments[i].TrainerID = newID
			r.assignments[i].TrainerName = newName
			n++
		}
	}
	return n, nil
}

type memHours struct{ *memStore }

func (r memHours) Create(ctx context.Context, _ sqlx.ExtContext, record *models.HoursRecord) error {
	if err := r.fail("hours.Create"); err != nil {
		return err
	}
	record.ID = r.id()
	r.memStore.hours = append(r.memStore.hours, *record)
	return nil
}

func (r memHours) ListForUpdate(ctx context.Context, _ sqlx.ExtContext, trainerID, date string) ([]models.HoursRecord, error) {
	var out []models.HoursRecord
	for _, h := range r.hours {
		if h.TrainerID == trainerID && h.Date == date {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r memHours) SetMinutes(ctx context.Context, _ sqlx.ExtContext, recordID int64, minutes int) error {
	if err := r.fail("hours.SetMinutes"); err != nil {
		return err
	}
	for i := range r.hours {
		if r.hours[i].ID == recordID {
			r.hours[i].MinutesWorked = minutes
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memHours) DeleteDepleted(ctx context.Context, _ sqlx.ExtContext, trainerID, date string) (int64, error) {
	if err := r.fail("hours.DeleteDepleted"); err != nil {
		return 0, err
	}
	var kept []models.HoursRecord
	var n int64
	for _, h := range r.hours {
		if h.TrainerID == trainerID && h.Date == date && h.MinutesWorked <= 0 {
			n++
			continue
		}
		kept = append(kept, h)
	}
	r.memStore.hours = kept
	return n, nil
}

func (r memHours) RenameTrainer(ctx context.Context, _ sqlx.ExtContext, oldID, newID, newName string) (int64, error) {
	var n int64
	for i := range r.hours {
		if r.hours[i].TrainerID == oldID {
			r.hours[i].TrainerID = newID
			r.hours[i].TrainerName = newName
			n++
		}
	}
	return n, nil
}

func (r memHours) Summaries(ctx context.Context) ([]models.TrainerHoursSummary, error) {
	if err := r.fail("hours.Summaries"); err != nil {
		return nil, err
	}
	totals := map[[2]string]int{}
	for _, h := range r.hours {
		totals[[2]string{h.TrainerID, h.TrainerName}] += h.MinutesWorked
	}
	out := make([]models.TrainerHoursSummary, 0, len(totals))
	for k, v := range totals {
		out = append(out, models.TrainerHoursSummary{TrainerID: k[0], TrainerName: k[1], TotalMinutes: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinutes != out[j].TotalMinutes {
			return out[i].TotalMinutes < out[j].TotalMinutes
		}
		return out[i].TrainerID < out[j].TrainerID
	})
	return out, nil
}

type invalidationCounter struct{ calls int }

func (c *invalidationCounter) InvalidateCache(context.Context) { c.calls++ }

func errorCode(err error) string {
	return appErrors.FromError(err).Code
}
