// job.go - Defines the Job model (a posting created by an OWNER)

package models

import "time"

// JobStatus is OPEN while a job accepts applications.
type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
)

// Job is a posting created by an OWNER.
type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Skill       string    `gorm:"not null" json:"skill"`
	Budget      float64   `gorm:"not null" json:"budget"`
	Status      JobStatus `gorm:"type:varchar(16);default:'OPEN';index" json:"status"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	Owner       User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
