package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateDefaultData ensures the built-in platform actor exists. Moderation
// activities need a platform row to hang handler references off.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")

	var id int64
	err := dbPool.QueryRow(ctx, "SELECT id FROM platforms WHERE handle = $1", "moderation").Scan(&id)
	if err == nil {
		lgr.Debug().Int64("platformId", id).Msg("Default platform actor already present")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		lgr.Error().Err(err).Msg("Error checking default platform actor")
		return err
	}

	err = dbPool.QueryRow(ctx,
		"INSERT INTO platforms (handle, status) VALUES ($1, $2) RETURNING id",
		"moderation", "active").Scan(&id)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default platform actor")
		return err
	}

	lgr.Info().Int64("platformId", id).Msg("Default platform actor created")
	return nil
}
