package store

import (
	"context"
	"time"

	"github.com/takallem/takallem/internal/course"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Credentials is the saved sign-in for one server.
type Credentials struct {
	ServerURL string
	Email     string
	UserID    int
	Token     string
	SavedAt   time.Time
}

// CredentialRepo persists the single signed-in session.
type CredentialRepo interface {
	// Save replaces any stored credentials.
	Save(ctx context.Context, c Credentials) error

	// Load returns the stored credentials, or nil if signed out.
	Load(ctx context.Context) (*Credentials, error)

	// Delete forgets the stored credentials. Deleting when none exist is not
	// an error.
	Delete(ctx context.Context) error
}

// Snapshot is a copy of a course progress record as last returned by the
// service.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	UserID    int
	Progress  course.CourseProgress
}

// SnapshotRepo caches progress records so the CLI can report them offline.
// The service stays authoritative; a snapshot is never written back.
type SnapshotRepo interface {
	// Save stores a new snapshot of p for userID.
	Save(ctx context.Context, userID int, p course.CourseProgress) error

	// Latest returns the most recent snapshot for the user's course, or nil
	// if none exist.
	Latest(ctx context.Context, userID int, name course.CourseName) (*Snapshot, error)

	// LatestPerCourse returns the most recent snapshot of every course the
	// user has a snapshot for, ordered by course name.
	LatestPerCourse(ctx context.Context, userID int) ([]*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// RequestEventData captures a single call to the service.
type RequestEventData struct {
	Method         string
	Route          string
	Status         int
	LatencyMs      int64
	Success        bool
	ErrorMessage   string
	IdempotencyKey string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// EventRepo provides append and query access to the request history.
type EventRepo interface {
	// AppendRequest records a service call.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// QueryRequests returns recorded calls, newest first.
	QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)
}
