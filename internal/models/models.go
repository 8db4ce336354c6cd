package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SQLiteTime is a time.Time wrapper that can scan SQLite datetime strings
type SQLiteTime struct {
	time.Time
}

// Scan implements sql.Scanner for SQLiteTime
func (st *SQLiteTime) Scan(value interface{}) error {
	if value == nil {
		st.Time = time.Time{}
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		st.Time = v
		return nil
	case string:
		// Try various formats
		layouts := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05Z",
			"2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05.999999-07:00",
			"2006-01-02 15:04:05-07:00",
			"2006-01-02 15:04:05",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				st.Time = t
				return nil
			}
		}
		return errors.New("unable to parse time: " + v)
	default:
		return errors.New("unsupported type for SQLiteTime")
	}
}

// Value implements driver.Valuer for SQLiteTime
func (st SQLiteTime) Value() (driver.Value, error) {
	// Always store in UTC with Z suffix for consistent string comparisons in SQLite
	return st.Time.UTC().Format("2006-01-02T15:04:05Z"), nil
}

// Now returns the current time as SQLiteTime (in UTC)
func Now() SQLiteTime {
	return SQLiteTime{Time: time.Now().UTC()}
}

// NewSQLiteTime creates a SQLiteTime from a time.Time (converted to UTC)
func NewSQLiteTime(t time.Time) SQLiteTime {
	return SQLiteTime{Time: t.UTC()}
}

// Tenant represents a multi-tenant organization
type Tenant struct {
	ID        string     `json:"id" db:"id"`
	Slug      string     `json:"slug" db:"slug"`
	Name      string     `json:"name" db:"name"`
	CreatedAt SQLiteTime `json:"created_at" db:"created_at"`
	UpdatedAt SQLiteTime `json:"updated_at" db:"updated_at"`
}

// Host represents a teacher account (the spec's "teacher" maps onto the
// donor codebase's Host entity — see DESIGN.md).
type Host struct {
	ID           string     `json:"id" db:"id"`
	TenantID     string     `json:"tenant_id" db:"tenant_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         string     `json:"name" db:"name"`
	Slug         string     `json:"slug" db:"slug"`
	CreatedAt    SQLiteTime `json:"created_at" db:"created_at"`
	UpdatedAt    SQLiteTime `json:"updated_at" db:"updated_at"`
}

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID         string     `json:"id" db:"id"`
	TenantID   string     `json:"tenant_id" db:"tenant_id"`
	HostID     *string    `json:"host_id" db:"host_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Details    JSONMap    `json:"details" db:"details"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	CreatedAt  SQLiteTime `json:"created_at" db:"created_at"`
}

// Schedule is a teacher-owned lesson-scheduling run: a set of candidate
// days plus the students and availability rows the engine consumes.
type Schedule struct {
	ID             string     `json:"id" db:"id"`
	TeacherID      string     `json:"teacher_id" db:"teacher_id"`
	Slug           string     `json:"slug" db:"slug"`
	Dates          StringSlice `json:"dates" db:"dates"` // ISO dates, JSON-encoded
	SlotMinutes    int        `json:"slot_minutes" db:"slot_minutes"`
	BufferMinutes  int        `json:"buffer_minutes" db:"buffer_minutes"`
	DayOpenCost    int        `json:"day_open_cost" db:"day_open_cost"`
	GapPenalty     int        `json:"gap_penalty" db:"gap_penalty"`
	IsFinalized    bool       `json:"is_finalized" db:"is_finalized"`
	FinalizedAt    *SQLiteTime `json:"finalized_at" db:"finalized_at"`
	CreatedAt      SQLiteTime `json:"created_at" db:"created_at"`
	UpdatedAt      SQLiteTime `json:"updated_at" db:"updated_at"`
}

// ScheduleStudent is a student entered into one schedule run.
type ScheduleStudent struct {
	ID           string     `json:"id" db:"id"`
	ScheduleID   string     `json:"schedule_id" db:"schedule_id"`
	Name         string     `json:"name" db:"name"`
	LessonLength int        `json:"lesson_length" db:"lesson_length"`
	CreatedAt    SQLiteTime `json:"created_at" db:"created_at"`
}

// Availability is one declared instant, belonging to either the schedule's
// teacher or one of its students (mutually exclusive).
type Availability struct {
	ID         string     `json:"id" db:"id"`
	ScheduleID string     `json:"schedule_id" db:"schedule_id"`
	TeacherID  string     `json:"teacher_id" db:"teacher_id"`
	StudentID  string     `json:"student_id" db:"student_id"`
	StartTime  SQLiteTime `json:"start_time" db:"start_time"`
	CreatedAt  SQLiteTime `json:"created_at" db:"created_at"`
}

// FinalizedSchedule persists one accepted lesson from a generated and
// finalized schedule run.
type FinalizedSchedule struct {
	ID          string     `json:"id" db:"id"`
	ScheduleID  string     `json:"schedule_id" db:"schedule_id"`
	StudentID   string     `json:"student_id" db:"student_id"`
	StudentName string     `json:"student_name" db:"student_name"`
	Day         string     `json:"day" db:"day"`
	StartTime   SQLiteTime `json:"start_time" db:"start_time"`
	EndTime     SQLiteTime `json:"end_time" db:"end_time"`
	CreatedAt   SQLiteTime `json:"created_at" db:"created_at"`
}

// RevokedToken is a JWT identifier (jti) rejected by bearer-token
// verification even if otherwise unexpired.
type RevokedToken struct {
	JTI       string     `json:"jti" db:"jti"`
	TeacherID string     `json:"teacher_id" db:"teacher_id"`
	RevokedAt SQLiteTime `json:"revoked_at" db:"revoked_at"`
	ExpiresAt SQLiteTime `json:"expires_at" db:"expires_at"`
}

// Custom JSON types for PostgreSQL arrays and JSONB

// StringSlice is a slice of strings that can be stored as JSONB
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, s)
}

// JSONMap is a map that can be stored as JSONB
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, m)
}

