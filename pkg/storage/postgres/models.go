package postgres

import (
	"time"

	"github.com/google/uuid"

	"usersvc/pkg/domain"
)

// PgUser is the row representation of a user in the users table.
type PgUser struct {
	ID         uuid.UUID `db:"id"          goqu:"skipinsert"`
	Name       string    `db:"name"`
	DocumentID string    `db:"document_id"`
	CreatedAt  time.Time `db:"created_at"  goqu:"skipinsert"`
}

func (p *PgUser) ToDomain() *domain.User {
	return &domain.User{
		ID:         domain.UserID(p.ID),
		Name:       p.Name,
		DocumentID: p.DocumentID,
		CreatedAt:  p.CreatedAt,
	}
}

func (p *PgUser) FromDomain(user domain.User) {
	*p = PgUser{
		ID:         uuid.UUID(user.ID),
		Name:       user.Name,
		DocumentID: user.DocumentID,
		CreatedAt:  user.CreatedAt,
	}
}

func pgUsersToDomain(users []PgUser) []domain.User {
	out := make([]domain.User, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToDomain())
	}

	return out
}
