package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"go.uber.org/zap"
	"max.ks1230/exchange-bot/internal/entity/user"
	"max.ks1230/exchange-bot/internal/logger"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage persists user preferences across restarts.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id int64) (user.Record, error) {
	query := psql.Select("default_fiat", "default_crypto").
		From("users").
		Where(sq.Eq{"id": id})

	var res user.Record
	var fiat, crypto string
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&fiat, &crypto)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Record{}, nil
	}
	if err != nil {
		return user.Record{}, errors.Wrap(err, "get user")
	}
	res.SetDefaultFiat(fiat)
	res.SetDefaultCrypto(crypto)

	favs, err := s.getFavorites(ctx, id)
	if err != nil {
		return user.Record{}, err
	}
	res.Favorites = favs
	return res, nil
}

func (s *PostgresStorage) getFavorites(ctx context.Context, id int64) ([]string, error) {
	query := psql.Select("currency").
		From("favorites").
		Where(sq.Eq{"user_id": id}).
		OrderBy("added_at")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get favorites")
	}
	defer func() {
		if rowErr := rows.Close(); rowErr != nil {
			logger.Warn("error closing rows", zap.Error(rowErr))
		}
	}()

	var favs []string
	for rows.Next() {
		var fav string
		if err = rows.Scan(&fav); err != nil {
			return nil, errors.Wrap(err, "get favorites")
		}
		favs = append(favs, fav)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get favorites")
	}
	return favs, nil
}

func (s *PostgresStorage) SaveByID(ctx context.Context, id int64, rec user.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save user")
	}
	defer func() {
		if txErr := tx.Rollback(); txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Warn("error when transaction rollback", zap.Error(txErr))
		}
	}()

	upsert := psql.Insert("users").
		Columns("id", "default_fiat", "default_crypto", "updated_at").
		Values(id, rec.DefaultFiat(""), rec.DefaultCrypto(""), time.Now()).
		Suffix("ON CONFLICT(id) DO UPDATE SET default_fiat = ?, default_crypto = ?, updated_at = ?",
			rec.DefaultFiat(""), rec.DefaultCrypto(""), time.Now())
	if _, err = upsert.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "save user")
	}

	del := psql.Delete("favorites").Where(sq.Eq{"user_id": id})
	if _, err = del.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "save favorites")
	}

	for _, fav := range rec.Favorites {
		ins := psql.Insert("favorites").
			Columns("user_id", "currency", "added_at").
			Values(id, fav, time.Now())
		if _, err = ins.RunWith(tx).ExecContext(ctx); err != nil {
			return errors.Wrap(err, "save favorites")
		}
	}

	return errors.Wrap(tx.Commit(), "save user")
}
