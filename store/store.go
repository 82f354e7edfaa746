// store.go - GORM-backed persistence for users, jobs and applications

package store

import (
	"context"
	"errors"

	"go-jobmarket-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors returned by every Store method.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the only component that talks to the database. Every method runs
// with the caller's context so request deadlines reach the driver.
type Store struct {
	db *gorm.DB
}

// New wraps an opened and migrated database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for health checks.
func (s *Store) DB() *gorm.DB { return s.db }

// CreateUser inserts u, defaulting the role to WORKER. A taken email
// returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleWorker
	}
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

// FindUserByEmail returns ErrNotFound when no account uses email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListUsers returns every user by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateJob inserts j as OPEN unless a status is already set.
func (s *Store) CreateJob(ctx context.Context, j *models.Job) error {
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(j).Error)
}

// FindJob returns ErrNotFound for an unknown id.
func (s *Store) FindJob(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := s.db.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

// ListOpenJobs returns every OPEN job, newest first.
func (s *Store) ListOpenJobs(ctx context.Context) ([]models.Job, error) {
	jobs := []models.Job{}
	err := s.db.WithContext(ctx).
		Where("status = ?", models.JobOpen).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// HasApplied reports whether userID already has an application for jobID.
func (s *Store) HasApplied(ctx context.Context, jobID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&count).Error
	return count > 0, err
}

// CreateApplication inserts a PENDING application. A second application for the
// same (job, user) pair fails with ErrDuplicate via the composite unique index.
func (s *Store) CreateApplication(ctx context.Context, a *models.Application) error {
	a.Status = models.ApplicationPending
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

// FindApplication returns ErrNotFound for an unknown id.
func (s *Store) FindApplication(ctx context.Context, id uint) (*models.Application, error) {
	var a models.Application
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// ListApplications returns the applications for jobID, newest first, each with
// its applicant's public fields.
func (s *Store) ListApplications(ctx context.Context, jobID uint) ([]models.Application, error) {
	apps := []models.Application{}
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return apps, nil
	}

	ids := make([]uint, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.UserID)
	}
	var applicants []models.Applicant
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "name", "email").
		Where("id IN ?", ids).
		Find(&applicants).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Applicant, len(applicants))
	for _, u := range applicants {
		byID[u.ID] = u
	}
	for i := range apps {
		if u, ok := byID[apps[i].UserID]; ok {
			apps[i].User = &u
		}
	}
	return apps, nil
}

// UpdateApplicationStatus sets the status of application id and returns the updated
// record. Completing an application closes its job in the same transaction; the
// returned bool reports whether the job was closed.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id uint, status models.ApplicationStatus) (*models.Application, bool, error) {
	var (
		app       models.Application
		jobClosed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&app).Update("status", status).Error; err != nil {
			return err
		}
		if status == models.ApplicationCompleted {
			res := tx.Model(&models.Job{}).
				Where("id = ? AND status = ?", app.JobID, models.JobOpen).
				Update("status", models.JobClosed)
			if res.Error != nil {
				return res.Error
			}
			jobClosed = res.RowsAffected > 0
		}
		return tx.First(&app, id).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &app, jobClosed, nil
}

// translate maps GORM errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
