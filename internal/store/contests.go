package store

import (
	"context"
	"time"

	"github.com/drawmaster/hub/internal/model"
)

const contestColumns = `id, title, description, rules, start_date, deadline, status,
	prizes, categories, created_by, winner_announced, created_at, updated_at`

func scanContest(row interface{ Scan(...any) error }) (model.Contest, error) {
	var c model.Contest
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Rules, &c.StartDate, &c.Deadline,
		&c.Status, &c.Prizes, &c.Categories, &c.CreatedBy, &c.WinnerAnnounced,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateContestParams holds the fields for CreateContest.
type CreateContestParams struct {
	Title       string
	Description string
	Rules       string
	StartDate   time.Time
	Deadline    time.Time
	Status      string
	Prizes      string
	Categories  string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateContest inserts a new contest and returns it.
func (q *Queries) CreateContest(ctx context.Context, arg CreateContestParams) (model.Contest, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO contests (title, description, rules, start_date, deadline, status,
		   prizes, categories, created_by, winner_announced, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		 RETURNING `+contestColumns,
		arg.Title, arg.Description, arg.Rules, arg.StartDate, arg.Deadline, arg.Status,
		arg.Prizes, arg.Categories, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanContest(row)
}

// GetContestByID returns the contest with the given ID.
func (q *Queries) GetContestByID(ctx context.Context, id int64) (model.Contest, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = ?`, id)
	return scanContest(row)
}

// ListContests returns all contests ordered by start date, newest first.
func (q *Queries) ListContests(ctx context.Context) ([]model.Contest, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contestColumns+` FROM contests ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectContests(rows)
}

func collectContests(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Contest, error) {
	var contests []model.Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

// UpdateContestParams holds the fields for UpdateContest.
type UpdateContestParams struct {
	ID          int64
	Title       string
	Description string
	Rules       string
	StartDate   time.Time
	Deadline    time.Time
	Status      string
	Prizes      string
	Categories  string
	UpdatedAt   time.Time
}

// UpdateContest replaces the mutable fields of a contest.
func (q *Queries) UpdateContest(ctx context.Context, arg UpdateContestParams) (model.Contest, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE contests
		 SET title = ?, description = ?, rules = ?, start_date = ?, deadline = ?,
		     status = ?, prizes = ?, categories = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+contestColumns,
		arg.Title, arg.Description, arg.Rules, arg.StartDate, arg.Deadline,
		arg.Status, arg.Prizes, arg.Categories, arg.UpdatedAt, arg.ID,
	)
	return scanContest(row)
}

// UpdateContestStatusParams holds the fields for UpdateContestStatus.
type UpdateContestStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

// UpdateContestStatus writes back a derived status change.
func (q *Queries) UpdateContestStatus(ctx context.Context, arg UpdateContestStatusParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE contests SET status = ?, updated_at = ? WHERE id = ?`,
		arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

// SetContestWinnerAnnouncedParams holds the fields for SetContestWinnerAnnounced.
type SetContestWinnerAnnouncedParams struct {
	ID              int64
	WinnerAnnounced bool
	UpdatedAt       time.Time
}

// SetContestWinnerAnnounced flips the winner_announced flag.
func (q *Queries) SetContestWinnerAnnounced(ctx context.Context, arg SetContestWinnerAnnouncedParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE contests SET winner_announced = ?, updated_at = ? WHERE id = ?`,
		arg.WinnerAnnounced, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteContest removes a contest row.
func (q *Queries) DeleteContest(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contests WHERE id = ?`, id)
	return err
}
