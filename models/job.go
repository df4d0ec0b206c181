package models

import "time"

// JobStatus, bir iş ilanının durumunu temsil eder.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job, bir iş ilanını temsil eder.
//
// İlan CRUD ekranları bu servisin kapsamı dışındadır — Job burada
// konuşmaları ve aday listelerini scope'lamak için tutulur:
// bir konuşma hangi ilan hakkında, bir aday hangi ilana başvurmuş.
type Job struct {
	ID         string    `json:"id"`
	EmployerID string    `json:"employer_id"`
	Title      string    `json:"title"`
	Status     JobStatus `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApplicationStatus, bir başvurunun durumunu temsil eder.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application, bir kullanıcının bir ilana başvurusunu temsil eder.
//
// İşverenin konuşma başlatabileceği kişiler = ilanlarına başvuranlar.
// Bu yüzden aday listesi sorguları applications tablosu üzerinden döner.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
