package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topics emitted by the registration and payment paths. Delivery to the
// notification collaborator is fire-and-forget; this outbox only records
// the intent inside the caller's transaction.
const (
	TopicRegistrationConfirmed = "registration.confirmed"
	TopicPaymentReceived       = "payment.received"
	TopicPaymentRefunded       = "payment.refunded"
	TopicCreditIssued          = "credit.issued"
)

// Record is one outbox row.
type Record struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	AffiliateID   snowflake.ID      `json:"affiliate_id" gorm:"column:affiliate_id;not null;index"`
	Topic         string            `json:"topic" gorm:"type:text;not null"`
	CorrelationID string            `json:"correlation_id" gorm:"type:text;not null"`
	Payload       datatypes.JSONMap `json:"payload" gorm:"type:jsonb"`
	Published     bool              `json:"published" gorm:"not null;default:false"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Record) TableName() string { return "registration_events" }

// Publisher appends outbox rows. Emit must be called with the
// transaction that performs the business write so the event commits or
// rolls back with it.
type Publisher interface {
	Emit(ctx context.Context, tx *gorm.DB, affiliateID snowflake.ID, topic string, payload map[string]interface{}) error
}

type outboxPublisher struct {
	genID *snowflake.Node
}

func NewOutboxPublisher(genID *snowflake.Node) Publisher {
	return &outboxPublisher{genID: genID}
}

func (p *outboxPublisher) Emit(ctx context.Context, tx *gorm.DB, affiliateID snowflake.ID, topic string, payload map[string]interface{}) error {
	payload = correlation.EnrichEventMetadata(ctx, payload)
	correlationID, _ := payload["correlation_id"].(string)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO registration_events (id, affiliate_id, topic, correlation_id, payload, published, created_at)
		 VALUES (?, ?, ?, ?, ?, false, ?)`,
		p.genID.Generate(),
		affiliateID,
		topic,
		correlationID,
		datatypes.JSON(body),
		time.Now().UTC(),
	).Error
}

var Module = fx.Module("events",
	fx.Provide(NewOutboxPublisher),
)
