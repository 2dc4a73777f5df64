package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CapUnlimited disables counting for a roster category entirely.
const CapUnlimited = -1

type RosterCategory string

var (
	CategoryOpen  RosterCategory = "open"
	CategoryWomen RosterCategory = "women"
)

type EventType string

var (
	TypeIndividual EventType = "individual"
	TypeTeam       EventType = "team"
)

// Event is the schedulable thing people register for. Caps are supplied
// externally; this subsystem only reads them.
type Event struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	AffiliateID   snowflake.ID `json:"affiliate_id" gorm:"column:affiliate_id;not null;index"`
	EventType     EventType    `json:"event_type" gorm:"type:text;not null;default:individual"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	Slug          string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Open          time.Time    `json:"open" gorm:"not null"`
	Close         time.Time    `json:"close" gorm:"not null"`
	OpenCap       int          `json:"open_cap" gorm:"not null;default:-1"`
	WomenCap      int          `json:"women_cap" gorm:"not null;default:-1"`
	QuestionCount int          `json:"question_count" gorm:"not null;default:0"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Event) TableName() string { return "events" }

// CapFor returns the configured cap for a roster category.
func (e *Event) CapFor(category RosterCategory) int {
	if category == CategoryWomen {
		return e.WomenCap
	}
	return e.OpenCap
}

// HasQuestionnaire reports whether registrants must answer event
// questions before completing.
func (e *Event) HasQuestionnaire() bool {
	return e.QuestionCount > 0
}

// Occupancy is the capacity decision input for one roster category.
type Occupancy struct {
	Category RosterCategory `json:"category"`
	Count    int            `json:"count"`
	Cap      int            `json:"cap"`
}

// Unlimited reports whether counting is bypassed for this category.
func (o Occupancy) Unlimited() bool { return o.Cap == CapUnlimited }

// HasRoom reports whether one more registration fits under the cap.
func (o Occupancy) HasRoom() bool {
	return o.Unlimited() || o.Count < o.Cap
}
