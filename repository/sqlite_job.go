package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emirhan/joblink/database"
	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg"
)

// sqliteJobRepo, JobRepository interface'inin SQLite implementasyonu.
type sqliteJobRepo struct {
	db database.TxQuerier
}

// NewSQLiteJobRepo, constructor.
func NewSQLiteJobRepo(db database.TxQuerier) JobRepository {
	return &sqliteJobRepo{db: db}
}

func (r *sqliteJobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	job := &models.Job{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, employer_id, title, status, created_at FROM jobs WHERE id = ?", id,
	).Scan(&job.ID, &job.EmployerID, &job.Title, &job.Status, &job.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

func (r *sqliteJobRepo) GetApplicationByID(ctx context.Context, id string) (*models.Application, error) {
	app := &models.Application{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, job_id, applicant_id, status, created_at FROM applications WHERE id = ?", id,
	).Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.Status, &app.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: application not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ListApplicantsForEmployer, işverenin ilanlarına başvuran adayları döner.
//
// JOIN mantığı:
// applications → jobs (ilan işverene mi ait) → users (aday bilgisi).
// Aynı aday birden fazla ilana başvurduysa her başvuru ayrı satır döner —
// frontend hangi ilan bağlamında konuşma başlatılacağını seçtirir.
func (r *sqliteJobRepo) ListApplicantsForEmployer(ctx context.Context, employerID string) ([]models.Candidate, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, j.id, j.title
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users u ON u.id = a.applicant_id
		WHERE j.employer_id = ?
		ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, employerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var jobID, jobTitle string
		if err := rows.Scan(
			&c.UserID, &c.Username, &c.DisplayName, &c.AvatarURL, &jobID, &jobTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		c.JobID = &jobID
		c.JobTitle = &jobTitle
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applicants: %w", err)
	}

	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

func (r *sqliteJobRepo) HasApplicationBetween(ctx context.Context, employerID, applicantID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.employer_id = ? AND a.applicant_id = ?`,
		employerID, applicantID,
	).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}

	return count > 0, nil
}
