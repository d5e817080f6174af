package admin

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *SystemUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*SystemUser, error)
	GetByEmail(ctx context.Context, email string) (*SystemUser, error)
	Update(ctx context.Context, u *SystemUser) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*SystemUser, int, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord) error
	List(ctx context.Context, limit, offset int) ([]*AuditRecord, int, error)
}
