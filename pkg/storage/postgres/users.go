package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"usersvc/pkg/domain"
	"usersvc/pkg/storage"
)

const (
	usersTable = "users"

	documentIDConstraint = "users_document_id_key"
)

// isDocumentIDViolation reports whether err is the unique violation raised by
// the document_id constraint.
func isDocumentIDViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == documentIDConstraint
}

// StoreUser inserts the user and returns the stored row. The unique constraint
// on document_id makes the insert fail with storage.ErrDuplicateDocumentID
// even when a concurrent transaction won the race after our existence check.
func (p *PgSQL) StoreUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var row PgUser
	row.FromDomain(user)

	var stored PgUser
	if _, err := p.Builder.Insert(usersTable).
		Rows(row).
		Returning(&PgUser{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		if isDocumentIDViolation(err) {
			return nil, storage.ErrDuplicateDocumentID
		}

		return nil, fmt.Errorf("could not store user into pg: %w", err)
	}

	return stored.ToDomain(), nil
}

// UserExistsByDocumentID reports whether a user with the given document ID exists.
func (p *PgSQL) UserExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	var one int
	found, err := p.Builder.From(usersTable).
		Select(goqu.L("1")).
		Where(goqu.I("document_id").Eq(documentID)).
		Limit(1).
		Executor().ScanValContext(ctx, &one)
	if err != nil {
		return false, fmt.Errorf("could not check user document id in pg: %w", err)
	}

	return found, nil
}

// UserByID returns a user by its ID, or nil when it does not exist.
func (p *PgSQL) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// Users returns a page of users sorting after the optional cursor.
// Results are ordered by created_at DESC, id DESC.
func (p *PgSQL) Users(ctx context.Context, cursor *storage.UserCursor, limit uint) (storage.UserPage, error) {
	var w []goqu.Expression
	if cursor != nil {
		// row comparison matches the (created_at, id) ordering and index
		w = append(w, goqu.L("(?, ?) < (?, ?)",
			goqu.I("created_at"), goqu.I("id"),
			cursor.CreatedAt, uuid.UUID(cursor.ID).String()))
	}

	// fetch one extra to determine if there is a next page
	ds := p.Builder.From(usersTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit + 1)

	var rows []PgUser
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserPage{}, fmt.Errorf("could not fetch users from pg: %w", err)
	}

	users := pgUsersToDomain(rows)

	var nextCursor *storage.UserCursor
	if uint(len(users)) > limit && limit > 0 {
		users = users[:limit]
		nextCursor = storage.CursorAt(users[len(users)-1])
	}

	return storage.UserPage{
		Users:      users,
		NextCursor: nextCursor,
	}, nil
}
