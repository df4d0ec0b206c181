package repository

import (
	"context"

	"github.com/emirhan/joblink/models"
)

// JobRepository, iş ilanı ve başvuru veritabanı işlemleri için interface.
//
// İlan CRUD ekranları kapsam dışı olduğundan interface küçük tutulur:
// konuşma başlatma akışının ihtiyaç duyduğu sorgular + aday listeleri.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetApplicationByID(ctx context.Context, id string) (*models.Application, error)
	// ListApplicantsForEmployer, işverenin ilanlarına başvuran adayları döner.
	// Konuşma başlatma ekranındaki "applicants" listesi buradan gelir —
	// her satır aday + başvurduğu ilanın bilgisi.
	ListApplicantsForEmployer(ctx context.Context, employerID string) ([]models.Candidate, error)
	// HasApplicationBetween, applicantID'nin employerID'nin herhangi bir
	// ilanına başvurusu var mı kontrol eder — eligibility check'i için.
	HasApplicationBetween(ctx context.Context, employerID, applicantID string) (bool, error)
}
