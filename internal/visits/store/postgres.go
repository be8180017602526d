package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmarks/kurz/internal/visits"
)

// Postgres is a PostgreSQL implementation of visits.Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed visit store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Save(ctx context.Context, visit *visits.Visit) error {
	query := `
		INSERT INTO visits (short_code, referer, remote_addr, user_agent, visit_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		visit.Code,
		visit.Referer,
		visit.RemoteAddr,
		visit.UserAgent,
		visit.VisitedAt,
	)

	return err
}

func (p *Postgres) List(ctx context.Context, code string, dateRange visits.DateRange) ([]visits.Visit, error) {
	query := `
		SELECT short_code, referer, remote_addr, user_agent, visit_date,
		       country_code, city_name, latitude, longitude
		FROM visits
		WHERE short_code = $1
		  AND ($2::timestamptz IS NULL OR visit_date >= $2)
		  AND ($3::timestamptz IS NULL OR visit_date <= $3)
		ORDER BY visit_date
	`

	rows, err := p.pool.Query(ctx, query, code, dateRange.Since, dateRange.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []visits.Visit

	for rows.Next() {
		var (
			visit       visits.Visit
			countryCode *string
			cityName    *string
			latitude    *float64
			longitude   *float64
		)

		err := rows.Scan(
			&visit.Code,
			&visit.Referer,
			&visit.RemoteAddr,
			&visit.UserAgent,
			&visit.VisitedAt,
			&countryCode,
			&cityName,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, err
		}

		if countryCode != nil || cityName != nil {
			visit.Location = &visits.Location{}

			if countryCode != nil {
				visit.Location.CountryCode = *countryCode
			}

			if cityName != nil {
				visit.Location.CityName = *cityName
			}

			if latitude != nil {
				visit.Location.Latitude = *latitude
			}

			if longitude != nil {
				visit.Location.Longitude = *longitude
			}
		}

		result = append(result, visit)
	}

	return result, rows.Err()
}
