package domain

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate")
	ErrAlreadyReviewed = errors.New("already reviewed")
)

type UserStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetSummaries resolves ids in one round trip. Unknown ids are absent
	// from the result.
	GetSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*UserSummary, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

type HostelStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*Hostel, error)
	Search(ctx context.Context, params *HostelSearchParams) ([]*Hostel, int64, error)
	Insert(ctx context.Context, hostel *Hostel) error
	Update(ctx context.Context, hostel *Hostel) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddReview appends review unless its author already reviewed the
	// hostel, recomputing rating and numReviews in the same write.
	AddReview(ctx context.Context, hostelID primitive.ObjectID, review Review) error
}

type RoommateStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*Roommate, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*Roommate, error)
	Search(ctx context.Context, params *RoommateSearchParams) ([]*Roommate, int64, error)
	Insert(ctx context.Context, roommate *Roommate) error
	Update(ctx context.Context, roommate *Roommate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// LoginAttemptStore counts failed logins per key inside a rolling window.
type LoginAttemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

type ReviewNotifier interface {
	NotifyReview(ctx context.Context, hostel *Hostel, review *Review) error
}
