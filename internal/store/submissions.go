package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/drawmaster/hub/internal/model"
)

const submissionColumns = `id, title, description, image_url, image_width, image_height,
	contest_id, user_id, rating, review_count, status, submitted_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (model.Submission, error) {
	var s model.Submission
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ImageURL, &s.ImageWidth, &s.ImageHeight,
		&s.ContestID, &s.UserID, &s.Rating, &s.ReviewCount, &s.Status, &s.SubmittedAt, &s.UpdatedAt)
	return s, err
}

func collectSubmissions(rows *sql.Rows) ([]model.Submission, error) {
	var submissions []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// CreateSubmissionParams holds the fields for CreateSubmission.
type CreateSubmissionParams struct {
	Title       string
	Description string
	ImageURL    string
	ImageWidth  sql.NullInt64
	ImageHeight sql.NullInt64
	ContestID   int64
	UserID      int64
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// CreateSubmission inserts a new submission in pending status and returns it.
func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO submissions (title, description, image_url, image_width, image_height,
		   contest_id, user_id, rating, review_count, status, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 'pending', ?, ?)
		 RETURNING `+submissionColumns,
		arg.Title, arg.Description, arg.ImageURL, arg.ImageWidth, arg.ImageHeight,
		arg.ContestID, arg.UserID, arg.SubmittedAt, arg.UpdatedAt,
	)
	return scanSubmission(row)
}

// GetSubmissionByID returns the submission with the given ID.
func (q *Queries) GetSubmissionByID(ctx context.Context, id int64) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// GetSubmissionForContestUserParams holds the fields for GetSubmissionForContestUser.
type GetSubmissionForContestUserParams struct {
	ContestID int64
	UserID    int64
}

// GetSubmissionForContestUser returns a user's submission to a contest, if any.
func (q *Queries) GetSubmissionForContestUser(ctx context.Context, arg GetSubmissionForContestUserParams) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE contest_id = ? AND user_id = ?`,
		arg.ContestID, arg.UserID)
	return scanSubmission(row)
}

// ListSubmissions returns all submissions, newest first.
func (q *Queries) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectSubmissions(rows)
}

// ListSubmissionsByUser returns one user's submissions, newest first.
func (q *Queries) ListSubmissionsByUser(ctx context.Context, userID int64) ([]model.Submission, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE user_id = ? ORDER BY submitted_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectSubmissions(rows)
}

// ListApprovedSubmissionsByContest returns a contest's approved submissions,
// newest first. Moderation gates visibility here: pending and rejected
// entries are never listed.
func (q *Queries) ListApprovedSubmissionsByContest(ctx context.Context, contestID int64) ([]model.Submission, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE contest_id = ? AND status = 'approved'
		 ORDER BY submitted_at DESC, id DESC`,
		contestID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectSubmissions(rows)
}

// CountSubmissionsByContest returns the number of submissions referencing a contest.
func (q *Queries) CountSubmissionsByContest(ctx context.Context, contestID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE contest_id = ?`, contestID).Scan(&count)
	return count, err
}

// UpdateSubmissionParams holds the fields for UpdateSubmission.
type UpdateSubmissionParams struct {
	ID          int64
	Title       string
	Description string
	ImageURL    string
	ImageWidth  sql.NullInt64
	ImageHeight sql.NullInt64
	UpdatedAt   time.Time
}

// UpdateSubmission replaces the owner-editable fields of a submission.
func (q *Queries) UpdateSubmission(ctx context.Context, arg UpdateSubmissionParams) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE submissions
		 SET title = ?, description = ?, image_url = ?, image_width = ?, image_height = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+submissionColumns,
		arg.Title, arg.Description, arg.ImageURL, arg.ImageWidth, arg.ImageHeight, arg.UpdatedAt, arg.ID,
	)
	return scanSubmission(row)
}

// UpdateSubmissionStatusParams holds the fields for UpdateSubmissionStatus.
type UpdateSubmissionStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

// UpdateSubmissionStatus sets the moderation status of a submission.
func (q *Queries) UpdateSubmissionStatus(ctx context.Context, arg UpdateSubmissionStatusParams) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE submissions SET status = ?, updated_at = ? WHERE id = ?
		 RETURNING `+submissionColumns,
		arg.Status, arg.UpdatedAt, arg.ID,
	)
	return scanSubmission(row)
}

// UpdateSubmissionRatingParams holds the fields for UpdateSubmissionRating.
type UpdateSubmissionRatingParams struct {
	ID          int64
	Rating      float64
	ReviewCount int64
	UpdatedAt   time.Time
}

// UpdateSubmissionRating writes a recomputed running mean and review count.
func (q *Queries) UpdateSubmissionRating(ctx context.Context, arg UpdateSubmissionRatingParams) (model.Submission, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE submissions SET rating = ?, review_count = ?, updated_at = ? WHERE id = ?
		 RETURNING `+submissionColumns,
		arg.Rating, arg.ReviewCount, arg.UpdatedAt, arg.ID,
	)
	return scanSubmission(row)
}

// DeleteSubmission removes a submission row.
func (q *Queries) DeleteSubmission(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	return err
}
