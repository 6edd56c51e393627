package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// MemberRepository reads members. Members are owned by the registration flow.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs the repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// List returns members matching the filter plus the total count.
func (r *MemberRepository) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	base := "FROM members"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE LOWER(username) LIKE $1 OR LOWER(member_id) LIKE $1 OR LOWER(email) LIKE $1"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT member_id, username, email, password, role, membership_plan, price %s ORDER BY username ASC LIMIT %d OFFSET %d", base, size, offset)
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}
	return members, total, nil
}

// FindByID returns a member or sql.ErrNoRows.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	const query = `SELECT member_id, username, email, password, role, membership_plan, price FROM members WHERE member_id = $1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// Exists reports whether the member id resolves, optionally inside a transaction.
func (r *MemberRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	target := exec
	if target == nil {
		target = r.db
	}
	var exists int
	if err := sqlx.GetContext(ctx, target, &exists, `SELECT 1 FROM members WHERE member_id = $1 LIMIT 1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check member: %w", err)
	}
	return true, nil
}
