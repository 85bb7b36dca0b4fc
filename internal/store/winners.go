package store

import (
	"context"
	"time"

	"github.com/drawmaster/hub/internal/model"
)

const winnerColumns = "id, contest_id, submission_id, rank, selected_by, announced_at"

func scanWinner(row interface{ Scan(...any) error }) (model.Winner, error) {
	var w model.Winner
	err := row.Scan(&w.ID, &w.ContestID, &w.SubmissionID, &w.Rank, &w.SelectedBy, &w.AnnouncedAt)
	return w, err
}

// CreateWinnerParams holds the fields for CreateWinner.
type CreateWinnerParams struct {
	ContestID    int64
	SubmissionID int64
	Rank         int64
	SelectedBy   int64
	AnnouncedAt  time.Time
}

// CreateWinner inserts a winner record and returns it. The unique indexes
// on (contest_id, rank) and (contest_id, submission_id) reject duplicate
// ranks and double-winning.
func (q *Queries) CreateWinner(ctx context.Context, arg CreateWinnerParams) (model.Winner, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO winners (contest_id, submission_id, rank, selected_by, announced_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+winnerColumns,
		arg.ContestID, arg.SubmissionID, arg.Rank, arg.SelectedBy, arg.AnnouncedAt,
	)
	return scanWinner(row)
}

// ListWinnersByContest returns a contest's winners ordered by rank ascending.
func (q *Queries) ListWinnersByContest(ctx context.Context, contestID int64) ([]model.Winner, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+winnerColumns+` FROM winners WHERE contest_id = ? ORDER BY rank ASC`,
		contestID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var winners []model.Winner
	for rows.Next() {
		w, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

// DeleteWinnersByContest removes all winner records for a contest. Used by
// the bulk announcement path, which replaces the winner list wholesale.
func (q *Queries) DeleteWinnersByContest(ctx context.Context, contestID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM winners WHERE contest_id = ?`, contestID)
	return err
}

// CountWinnersByContest returns the number of winner records for a contest.
func (q *Queries) CountWinnersByContest(ctx context.Context, contestID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM winners WHERE contest_id = ?`, contestID).Scan(&count)
	return count, err
}
