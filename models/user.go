// user.go - Defines the User model for the database

package models // Declares the package name

import "time"

type User struct { // User struct represents a user in the database
	ID        uint      `gorm:"primaryKey" json:"id"`                          // Unique user ID (primary key)
	Name      string    `gorm:"not null" json:"name"`                          // Display name
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`             // User's email (must be unique, cannot be null)
	Password  string    `gorm:"not null" json:"-"`                             // bcrypt hash, never serialized
	Role      Role      `gorm:"type:varchar(16);default:'WORKER'" json:"role"` // OWNER or WORKER
	CreatedAt time.Time `json:"createdAt"`
}

// Applicant is the public projection of a User embedded in application listings.
type Applicant struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
