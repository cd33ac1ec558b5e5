// Package store keeps geo points in Postgres keyed by the geocode cell they
// fall in. Lookups are exact cell matches at the store precision, which
// makes a cell and its eight neighbors a single indexed query.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kass/go-geocode/pkg/config"
	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/logging"
	"github.com/kass/go-geocode/pkg/metric"
	"github.com/kass/go-geocode/pkg/models"
)

var batchSize = 10000

// ErrPrecisionMismatch is returned when a lookup cell is not at the store
// precision.
var ErrPrecisionMismatch = errors.New("cell precision does not match store precision")

var storeLog = logging.NewLevelLogger(logging.LevelInfo, logging.NewDefaultLogger("store"))

// SetLogger replaces the package logger. A nil logger silences it.
func SetLogger(level int32, logger logging.Logger) {
	storeLog.Logger = logger
	storeLog.SetLevel(level)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS geo_points (
		id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		cell BIGINT NOT NULL,
		precision SMALLINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_geo_points_cell ON geo_points (precision, cell)`,
}

// toKey maps the unsigned Morton order onto the signed BIGINT order.
func toKey(bits uint64) int64 {
	return int64(bits ^ 1<<63)
}

func fromKey(key int64) uint64 {
	return uint64(key) ^ 1<<63
}

type Store struct {
	db        *sql.DB
	precision uint8
}

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, cfg config.Postgres, precision uint8) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	s, err := New(db, precision)
	if err != nil {
		db.Close()
		return nil, err
	}
	storeLog.Infof("connected to %s:%d/%s, precision %d", cfg.Host, cfg.Port, cfg.DBName, precision)
	return s, nil
}

// New wraps an open database. Every key is written and looked up at
// precision.
func New(db *sql.DB, precision uint8) (*Store, error) {
	if precision < geocode.MinPrecision || precision > geocode.MaxPrecision {
		return nil, fmt.Errorf("%w: store precision %d", geocode.ErrInvalidPrecision, precision)
	}
	return &Store{db: db, precision: precision}, nil
}

func (s *Store) Precision() uint8 { return s.precision }

func observe(op string, start time.Time, err error) {
	metric.StoreOpCnt.WithLabelValues(op).Inc()
	metric.StoreLatency.WithLabelValues(op).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	if err != nil {
		metric.ErrorCnt.WithLabelValues("store", op).Inc()
	}
}

// InitSchema creates the points table and its cell index.
func (s *Store) InitSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe("init_schema", start, err) }()
	for _, query := range schema {
		if _, err = s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// BulkInsertPoints encodes every point at the store precision and inserts
// them in batched transactions. Points without an ID get a random one.
// The points are updated in place: ID and Cell are set on each one.
// Nothing is written if any point fails to encode, but batches are
// committed one by one, so a failing batch leaves the earlier ones stored.
func (s *Store) BulkInsertPoints(ctx context.Context, points []*models.Point) (err error) {
	start := time.Now()
	defer func() { observe("bulk_insert", start, err) }()

	for _, p := range points {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err = p.Encode(s.precision); err != nil {
			return err
		}
	}

	for i := 0; i < len(points); i += batchSize {
		end := i + batchSize
		if end > len(points) {
			end = len(points)
		}
		if err = s.insertBatch(ctx, points[i:end]); err != nil {
			return err
		}
		metric.PointsIndexed.Add(float64(end - i))
		storeLog.Debugf("inserted points %d-%d of %d", i, end, len(points))
	}
	storeLog.Infof("inserted %d points in %v", len(points), time.Since(start))
	return nil
}

func (s *Store) insertBatch(ctx context.Context, points []*models.Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO geo_points (id, lat, lon, cell, precision) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.ExecContext(ctx, p.ID, p.Location.Lat, p.Location.Lon,
			toKey(p.Cell.Bits), int64(p.Cell.Precision))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert point %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// PointsInCell returns the points stored under code. code must be at the
// store precision.
func (s *Store) PointsInCell(ctx context.Context, code geocode.GeoCode) ([]*models.Point, error) {
	return s.PointsInCells(ctx, []geocode.GeoCode{code})
}

// PointsInCells returns the points stored under any of codes. Duplicate
// codes are looked up once.
func (s *Store) PointsInCells(ctx context.Context, codes []geocode.GeoCode) (points []*models.Point, err error) {
	start := time.Now()
	defer func() { observe("points_in_cells", start, err) }()

	keys := make([]int64, 0, len(codes))
	seen := make(map[uint64]struct{}, len(codes))
	for _, g := range codes {
		if g.Precision() != s.precision {
			return nil, fmt.Errorf("%w: cell %v, store %d", ErrPrecisionMismatch, g, s.precision)
		}
		if _, ok := seen[g.Bits()]; ok {
			continue
		}
		seen[g.Bits()] = struct{}{}
		keys = append(keys, toKey(g.Bits()))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lat, lon, cell FROM geo_points WHERE precision = $1 AND cell = ANY($2) ORDER BY cell, id`,
		int64(s.precision), pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			lat, lon float64
			key      int64
		)
		if err = rows.Scan(&id, &lat, &lon, &key); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		points = append(points, &models.Point{
			ID:       id,
			Location: &models.Location{Lat: lat, Lon: lon},
			Cell:     &models.Cell{Bits: fromKey(key), Precision: s.precision},
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return points, nil
}

// Nearby returns the points in the cell holding c and in its eight
// neighbors.
func (s *Store) Nearby(ctx context.Context, c geocode.Coordinate) ([]*models.Point, error) {
	g, err := geocode.Encode(c, s.precision)
	if err != nil {
		return nil, err
	}
	return s.PointsInCells(ctx, append([]geocode.GeoCode{g}, g.Neighbors().All()...))
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (count int64, err error) {
	start := time.Now()
	defer func() { observe("count", start, err) }()
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM geo_points").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
