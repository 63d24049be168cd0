// Package sqlite provides the SQLite-backed jersey store.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"jersey-bot/internal/models"
	"jersey-bot/internal/storage"
	"jersey-bot/internal/storage/sqlite/migrations"
)

// Store persists jersey bot state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path, applies embedded migrations and seeds the
// deadline row (one year from now) when it is missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	def := toMillis(time.Now().AddDate(1, 0, 0))
	if _, err := sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO deadlines (id, vote_deadline, payment_deadline) VALUES (1, ?, ?)`,
		def, def,
	); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "seed deadlines")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ---------- Users ----------

func (s *Store) EnsureUser(ctx context.Context, userID int64) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (telegram_id, created_at) VALUES (?, ?)`,
		userID, toMillis(time.Now()),
	)
	if err != nil {
		return errors.Wrapf(err, "ensure user %d", userID)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var (
		u          models.User
		choice     sql.NullInt64
		voted      bool
		ordered    bool
		createdAtM int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT telegram_id, vote_choice, has_voted, has_ordered, created_at
		   FROM users
		  WHERE telegram_id = ?`,
		userID,
	).Scan(&u.ID, &choice, &voted, &ordered, &createdAtM)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, errors.Wrapf(err, "get user %d", userID)
	}
	if choice.Valid {
		v := choice.Int64
		u.VoteChoice = &v
	}
	u.HasVoted = voted
	u.HasOrdered = ordered
	u.CreatedAt = fromMillis(createdAtM)
	return u, nil
}

// ---------- Deadlines ----------

func (s *Store) GetDeadlines(ctx context.Context) (models.Deadlines, error) {
	var vote, payment int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT vote_deadline, payment_deadline FROM deadlines WHERE id = 1`,
	).Scan(&vote, &payment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Deadlines{}, storage.ErrNotFound
		}
		return models.Deadlines{}, errors.Wrap(err, "get deadlines")
	}
	return models.Deadlines{
		VoteDeadline:    fromMillis(vote),
		PaymentDeadline: fromMillis(payment),
	}, nil
}

func (s *Store) SetVoteDeadline(ctx context.Context, t time.Time) error {
	return s.setDeadline(ctx, "vote_deadline", t)
}

func (s *Store) SetPaymentDeadline(ctx context.Context, t time.Time) error {
	return s.setDeadline(ctx, "payment_deadline", t)
}

func (s *Store) setDeadline(ctx context.Context, column string, t time.Time) error {
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE deadlines SET `+column+` = ? WHERE id = 1`, toMillis(t))
	if err != nil {
		return errors.Wrapf(err, "set %s", column)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "set %s", column)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ---------- Orders ----------

func (s *Store) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if o.PaymentTime.IsZero() {
		o.PaymentTime = time.Now()
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, errors.Wrap(err, "begin create order")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (telegram_id, created_at) VALUES (?, ?)`,
		o.UserID, toMillis(o.PaymentTime),
	); err != nil {
		return models.Order{}, errors.Wrap(err, "create order: ensure user")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET has_ordered = 1 WHERE telegram_id = ? AND has_ordered = 0`,
		o.UserID,
	)
	if err != nil {
		return models.Order{}, errors.Wrap(err, "create order: flag user")
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Order{}, errors.Wrap(err, "create order: flag user")
	} else if n == 0 {
		return models.Order{}, storage.ErrConflict
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO orders (telegram_id, full_name, shirt_number, shirt_name, size, receipt_file_id, payment_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.FullName, o.ShirtNumber, o.ShirtName, string(o.Size), o.ReceiptHandle, toMillis(o.PaymentTime),
	)
	if err != nil {
		return models.Order{}, errors.Wrap(err, "create order: insert")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Order{}, errors.Wrap(err, "create order: last id")
	}
	if err := tx.Commit(); err != nil {
		return models.Order{}, errors.Wrap(err, "create order: commit")
	}
	o.ID = id
	o.PaymentTime = fromMillis(toMillis(o.PaymentTime))
	return o, nil
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return n, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, telegram_id, full_name, shirt_number, shirt_name, size, receipt_file_id, payment_time
		   FROM orders
		  ORDER BY payment_time DESC, id DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var (
			o    models.Order
			size string
			paid int64
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.FullName, &o.ShirtNumber, &o.ShirtName, &size, &o.ReceiptHandle, &paid); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		o.Size = models.Size(size)
		o.PaymentTime = fromMillis(paid)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return orders, nil
}

// ---------- Votes ----------

func (s *Store) RecordVote(ctx context.Context, userID, designID int64) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin record vote")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (telegram_id, created_at) VALUES (?, ?)`,
		userID, toMillis(time.Now()),
	); err != nil {
		return errors.Wrap(err, "record vote: ensure user")
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET vote_choice = ?, has_voted = 1 WHERE telegram_id = ? AND has_voted = 0`,
		designID, userID,
	)
	if err != nil {
		return errors.Wrap(err, "record vote")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "record vote")
	}
	if n == 0 {
		return storage.ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "record vote: commit")
	}
	return nil
}

func (s *Store) VoteTally(ctx context.Context) (models.VoteTally, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT d.id, d.name, d.description, d.image_file_id, d.created_at, d.is_active, d.display_order,
		        COUNT(u.telegram_id) AS votes
		   FROM designs d
		   LEFT JOIN users u ON u.vote_choice = d.id AND u.has_voted = 1
		  WHERE d.is_active = 1
		  GROUP BY d.id
		  ORDER BY votes DESC, d.id ASC`,
	)
	if err != nil {
		return models.VoteTally{}, errors.Wrap(err, "vote tally")
	}
	defer rows.Close()

	tally := models.VoteTally{Results: []models.DesignVotes{}}
	for rows.Next() {
		var dv models.DesignVotes
		d, err := scanDesign(rows, &dv.Votes)
		if err != nil {
			return models.VoteTally{}, err
		}
		dv.Design = d
		tally.Results = append(tally.Results, dv)
	}
	if err := rows.Err(); err != nil {
		return models.VoteTally{}, errors.Wrap(err, "iterate vote tally")
	}

	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*)
		   FROM users u
		  WHERE u.has_voted = 1
		    AND NOT EXISTS (SELECT 1 FROM designs d WHERE d.id = u.vote_choice AND d.is_active = 1)`,
	).Scan(&tally.Dangling)
	if err != nil {
		return models.VoteTally{}, errors.Wrap(err, "count dangling votes")
	}
	return tally, nil
}

// ---------- Designs ----------

const designColumns = `id, name, description, image_file_id, created_at, is_active, display_order`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDesign(row rowScanner, extra ...any) (models.Design, error) {
	var (
		d         models.Design
		createdAt int64
	)
	dest := append([]any{&d.ID, &d.Name, &d.Description, &d.ImageHandle, &createdAt, &d.IsActive, &d.DisplayOrder}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Design{}, storage.ErrNotFound
		}
		return models.Design{}, errors.Wrap(err, "scan design")
	}
	d.CreatedAt = fromMillis(createdAt)
	return d, nil
}

func (s *Store) CreateDesign(ctx context.Context, d models.Design) (models.Design, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO designs (name, description, image_file_id, created_at, is_active, display_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.Description, d.ImageHandle, toMillis(d.CreatedAt), d.IsActive, d.DisplayOrder,
	)
	if err != nil {
		return models.Design{}, errors.Wrap(err, "create design")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Design{}, errors.Wrap(err, "create design: last id")
	}
	d.ID = id
	d.CreatedAt = fromMillis(toMillis(d.CreatedAt))
	return d, nil
}

func (s *Store) GetDesign(ctx context.Context, id int64) (models.Design, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+designColumns+` FROM designs WHERE id = ?`, id)
	return scanDesign(row)
}

func (s *Store) ListActiveDesigns(ctx context.Context) ([]models.Design, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+designColumns+`
		   FROM designs
		  WHERE is_active = 1
		  ORDER BY display_order ASC, created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list designs")
	}
	defer rows.Close()

	designs := []models.Design{}
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate designs")
	}
	return designs, nil
}

// UpdateDesign writes only the fields present in patch. An empty patch only
// checks that the design exists.
func (s *Store) UpdateDesign(ctx context.Context, id int64, patch models.DesignPatch) error {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.ImageHandle != nil {
		sets = append(sets, "image_file_id = ?")
		args = append(args, *patch.ImageHandle)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if patch.DisplayOrder != nil {
		sets = append(sets, "display_order = ?")
		args = append(args, *patch.DisplayOrder)
	}
	if patch.Empty() {
		_, err := s.GetDesign(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE designs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return errors.Wrapf(err, "update design %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update design %d", id)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
