package models

import "time"

// Roles assignable at signup. A user's role is fixed at creation.
const (
	RoleCasual       = "casual"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// User represents a platform member. Secrets are stored as bcrypt hashes only.
type User struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	Name         string               `gorm:"size:128;not null" json:"name"`
	Email        string               `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string               `gorm:"size:255;not null" json:"-"`
	Role         string               `gorm:"size:16;not null;default:'casual'" json:"role"`
	Professional *ProfessionalProfile `gorm:"constraint:OnDelete:CASCADE" json:"professional,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ProfessionalProfile is the verification sub-record attached to users
// registered with the professional role. Verified stays false until the
// credentials are reviewed out of band.
type ProfessionalProfile struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"-"`
	Degree      string `gorm:"size:128;not null" json:"degree"`
	Institution string `gorm:"size:255;not null" json:"institution"`
	Credentials string `gorm:"type:text" json:"credentials"`
	Verified    bool   `gorm:"not null;default:false" json:"is_verified"`
}

// Professional is a directory article authored by a practitioner.
type Professional struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Specialties string    `gorm:"size:255;not null" json:"specialties"`
	Institution string    `gorm:"size:255;not null" json:"institution"`
	Degree      string    `gorm:"size:128;not null" json:"degree"`
	Bio         string    `gorm:"type:text;not null" json:"bio"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
