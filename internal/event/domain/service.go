package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Event, error)
	Get(ctx context.Context, id snowflake.ID) (*Event, error)
	// List pages through the affiliate's events in creation order.
	List(ctx context.Context, page pagination.Pagination) (*EventPage, error)
	// EvaluateCapacity runs the sweep-free occupancy count for one roster
	// category. Only confirmed and partially paid registrations occupy a
	// slot.
	EvaluateCapacity(ctx context.Context, eventID snowflake.ID, category RosterCategory, excluding snowflake.ID) (Occupancy, error)
	// EvaluateCapacityTx is EvaluateCapacity inside a caller-held
	// transaction, for capacity rechecks at payment time.
	EvaluateCapacityTx(ctx context.Context, tx *gorm.DB, eventID snowflake.ID, category RosterCategory, excluding snowflake.ID) (Occupancy, error)
}

type EventPage struct {
	Events   []Event              `json:"events"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type CreateRequest struct {
	EventType     EventType `json:"event_type"`
	Name          string    `json:"name"`
	Open          time.Time `json:"open"`
	Close         time.Time `json:"close"`
	OpenCap       *int      `json:"open_cap"`
	WomenCap      *int      `json:"women_cap"`
	QuestionCount int       `json:"question_count"`
}

var (
	ErrNotFound           = errors.New("event_not_found")
	ErrInvalidAffiliate   = errors.New("invalid_affiliate")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidWindow      = errors.New("invalid_window")
	ErrInvalidEventType   = errors.New("invalid_event_type")
	ErrInvalidCap         = errors.New("invalid_cap")
	ErrInvalidCategory    = errors.New("invalid_roster_category")
	ErrAffiliateMismatch  = errors.New("affiliate_mismatch")
	ErrDuplicateEventSlug = errors.New("duplicate_event_slug")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
)
