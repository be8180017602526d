package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmarks/kurz/internal/shortener"
)

// PostgresRepository is the PostgreSQL implementation of
// shortener.Repository. The short_code column carries a unique index, which
// is the actual guarantee behind slug uniqueness; the service's pre-check
// is only a fast path.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectShortURL = `
	SELECT id, short_code, original_url, valid_since, valid_until, max_visits, created_at
	FROM short_urls
`

func (p *PostgresRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	row := p.pool.QueryRow(ctx, selectShortURL+` WHERE short_code = $1`, string(code))

	return p.scanShortURL(ctx, row)
}

func (p *PostgresRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*shortener.ShortURL, error) {
	// Concurrent creations can leave more than one row per URL; the oldest
	// one wins for dedup purposes.
	row := p.pool.QueryRow(ctx, selectShortURL+` WHERE original_url = $1 ORDER BY id LIMIT 1`, originalURL)

	return p.scanShortURL(ctx, row)
}

func (p *PostgresRepository) Begin(ctx context.Context) (shortener.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &pgTx{tx: tx}, nil
}

func (p *PostgresRepository) scanShortURL(ctx context.Context, row pgx.Row) (*shortener.ShortURL, error) {
	var (
		shortURL shortener.ShortURL
		code     *string
	)

	err := row.Scan(
		&shortURL.ID,
		&code,
		&shortURL.OriginalURL,
		&shortURL.ValidSince,
		&shortURL.ValidUntil,
		&shortURL.MaxVisits,
		&shortURL.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if code != nil {
		shortURL.Code = shortener.Code(*code)
	}

	tags, err := p.loadTags(ctx, shortURL.ID)
	if err != nil {
		return nil, err
	}

	shortURL.Tags = tags

	return &shortURL, nil
}

func (p *PostgresRepository) loadTags(ctx context.Context, shortURLID int64) ([]string, error) {
	query := `
		SELECT t.name
		FROM tags t
		JOIN short_url_tags st ON st.tag_id = t.id
		WHERE st.short_url_id = $1
		ORDER BY t.name
	`

	rows, err := p.pool.Query(ctx, query, shortURLID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tags = append(tags, name)
	}

	return tags, rows.Err()
}

// pgTx implements shortener.Tx over one pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) CreateDraft(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (original_url, valid_since, valid_until, max_visits, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return t.tx.QueryRow(ctx, query,
		shortURL.OriginalURL,
		shortURL.ValidSince,
		shortURL.ValidUntil,
		shortURL.MaxVisits,
		shortURL.CreatedAt,
	).Scan(&shortURL.ID)
}

func (t *pgTx) AssignCode(ctx context.Context, shortURL *shortener.ShortURL) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE short_urls SET short_code = $1 WHERE id = $2`,
		string(shortURL.Code),
		shortURL.ID,
	)
	if err != nil {
		return translateUniqueViolation(err, shortURL.Code)
	}

	return t.linkTags(ctx, shortURL)
}

// linkTags resolves each tag name with a find-or-create upsert and links it
// to the row, all inside the creation transaction so a failure here rolls
// the draft back too.
func (t *pgTx) linkTags(ctx context.Context, shortURL *shortener.ShortURL) error {
	for _, name := range shortURL.Tags {
		var tagID int64

		err := t.tx.QueryRow(ctx, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return err
		}

		_, err = t.tx.Exec(ctx, `
			INSERT INTO short_url_tags (short_url_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, shortURL.ID, tagID)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

// translateUniqueViolation maps a 23505 on the short_code index to
// ErrCodeTaken so the service can surface it as a slug conflict.
func translateUniqueViolation(err error, code shortener.Code) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("code %q: %w", code, shortener.ErrCodeTaken)
	}

	return err
}
