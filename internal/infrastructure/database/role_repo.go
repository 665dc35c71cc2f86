package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vaops/internal/domain"
	"vaops/internal/ports/output"
)

var _ output.RoleService = (*RoleRepository)(nil)

// RoleRepository resolves user role sets from the user_roles table.
type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) GetUserRoles(ctx context.Context, userID string) (domain.RoleSet, error) {
	q := queryFrom(ctx, r.pool)
	rows, err := q.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("get user roles: %w", err)
	}
	defer rows.Close()

	var roles domain.RoleSet
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get user roles: %w", err)
	}
	return roles, nil
}
