// application.go - Defines the Application model (a WORKER's application to a job)

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationSelected  ApplicationStatus = "SELECTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationCompleted ApplicationStatus = "COMPLETED"
)

// ParseStatusUpdate accepts only the statuses an owner may move an application to.
// PENDING is the initial state and cannot be set explicitly.
func ParseStatusUpdate(s string) (ApplicationStatus, bool) {
	switch st := ApplicationStatus(s); st {
	case ApplicationSelected, ApplicationRejected, ApplicationCompleted:
		return st, true
	default:
		return "", false
	}
}

type Application struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	JobID         uint              `gorm:"not null;uniqueIndex:idx_application_job_user" json:"jobId"`
	Job           Job               `gorm:"foreignKey:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID        uint              `gorm:"not null;uniqueIndex:idx_application_job_user" json:"userId"`
	Worker        User              `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	User          *Applicant        `gorm:"-" json:"user,omitempty"` // filled by listings only
	Answers       Answers           `gorm:"type:text" json:"answers"`
	PortfolioLink string            `json:"portfolioLink"`
	Status        ApplicationStatus `gorm:"type:varchar(16);default:'PENDING'" json:"status"`
	CreatedAt     time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Answers holds the applicant's free-form JSON payload verbatim.
type Answers json.RawMessage

func (a Answers) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Answers) UnmarshalJSON(b []byte) error {
	if a == nil {
		return errors.New("models.Answers: UnmarshalJSON on nil pointer")
	}
	if string(b) == "null" {
		*a = nil
		return nil
	}
	*a = append((*a)[:0], b...)
	return nil
}

func (a Answers) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return string(a), nil
}

func (a *Answers) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
	case string:
		*a = Answers(v)
	case []byte:
		*a = append(Answers(nil), v...)
	default:
		return errors.New("models.Answers: unsupported scan type")
	}
	return nil
}
