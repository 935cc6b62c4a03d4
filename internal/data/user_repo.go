package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// UserRepo resolves users for display and access checks.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// UsersByIDs resolves users of the program and super users of any program.
// When a user exists in several programs the program's own row wins.
func (r *UserRepo) UsersByIDs(ctx context.Context, programID string, ids []string) (map[string]model.UserRef, error) {
	out := make(map[string]model.UserRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var refs []model.UserRef
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT DISTINCT ON (user_id) user_id, first_name, middle_name, last_name
			FROM "user"
			WHERE user_id = ANY($2) AND is_deleted = false
			  AND (program_id = $1 OR lower(user_type) = $3)
			ORDER BY user_id, (program_id = $1) DESC`,
			programID, ids, string(model.UserTypeSuperUser))
		if err != nil {
			return err
		}
		refs, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.UserRef])
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	for _, ref := range refs {
		out[ref.ID] = ref
	}
	return out, nil
}

// UserType returns the type recorded for the user. Super user rows take
// precedence over program rows.
func (r *UserRepo) UserType(ctx context.Context, userID string) (model.UserType, error) {
	var raw string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT user_type FROM "user"
			WHERE user_id = $1 AND is_deleted = false
			ORDER BY (lower(user_type) = $2) DESC, id
			LIMIT 1`, userID, string(model.UserTypeSuperUser)).Scan(&raw)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFoundf("user %s not found", userID)
	}
	if err != nil {
		return "", mapErr(err, "")
	}
	return model.ParseUserType(raw), nil
}
