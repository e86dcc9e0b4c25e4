package db

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// ApplicationStatus is the lifecycle state of an [Application].
type ApplicationStatus string

// Known application states. New applications are always stored as submitted;
// draft is the column default for rows written by other tools.
const (
	StatusDraft     ApplicationStatus = "draft"
	StatusSubmitted ApplicationStatus = "submitted"
)

// Program is an academic program applicants can choose.
type Program struct {
	bun.BaseModel `bun:"table:programs" json:"-" yaml:"-"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id" yaml:"id"`
	Code        string `bun:"code,notnull" json:"code" yaml:"code"`
	Name        string `bun:"name,notnull" json:"name" yaml:"name"`
	Description string `bun:"description,notnull" json:"description" yaml:"description"`
}

// Payment is an application fee payment. Payments exist independently and are
// linked to an application afterwards.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Amount    float64   `bun:"amount,notnull"`
	Reference string    `bun:"reference,notnull"`
	Paid      bool      `bun:"paid,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Application is an applicant's submission for a program.
type Application struct {
	bun.BaseModel `bun:"table:applications"`

	ID          int64             `bun:"id,pk,autoincrement"`
	FullName    string            `bun:"full_name,notnull"`
	NRCNumber   string            `bun:"nrc_number,notnull"`
	ProgramID   int64             `bun:"program_id,notnull"`
	Grade12Path string            `bun:"grade12_path,notnull"`
	NRCPath     string            `bun:"nrc_path,notnull"`
	PaymentID   sql.NullInt64     `bun:"payment_id"`
	Status      ApplicationStatus `bun:"status,notnull"`
	CreatedAt   time.Time         `bun:"created_at,notnull"`
}

// User is an applicant account. PasswordHash and Salt are base64 text; the
// plaintext password is never stored.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Salt         string    `bun:"salt,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}
