package admin

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, name, email, password_hash, role, status, last_login_at, created_at, updated_at`

func (r *userRepoPG) scan(row pgx.Row) (*SystemUser, error) {
	var u SystemUser
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *SystemUser) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_user (id, name, email, password_hash, role, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.Status)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SystemUser, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM system_user WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*SystemUser, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM system_user WHERE email = $1`, strings.ToLower(email)))
}

func (r *userRepoPG) Update(ctx context.Context, u *SystemUser) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE system_user SET name=$2, email=$3, password_hash=$4, role=$5, status=$6,
			last_login_at=$7, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.Status, u.LastLoginAt)
	return err
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM system_user WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*SystemUser, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM system_user`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM system_user ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SystemUser
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewAuditRepoPG(pool *pgxpool.Pool) AuditRepository {
	return &auditRepoPG{pool: pool}
}

const auditCols = `id, user_id, user_role, resource, action, method, path, ip_address,
	request_id, status_code, occurred_at`

func (r *auditRepoPG) Insert(ctx context.Context, rec *AuditRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, user_id, user_role, resource, action, method, path,
			ip_address, request_id, status_code, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.UserID, rec.UserRole, rec.Resource, rec.Action, rec.Method, rec.Path,
		rec.IPAddress, rec.RequestID, rec.StatusCode, rec.OccurredAt)
	return err
}

func (r *auditRepoPG) List(ctx context.Context, limit, offset int) ([]*AuditRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditCols+` FROM audit_log ORDER BY occurred_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.UserRole, &rec.Resource, &rec.Action,
			&rec.Method, &rec.Path, &rec.IPAddress, &rec.RequestID, &rec.StatusCode,
			&rec.OccurredAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, nil
}
