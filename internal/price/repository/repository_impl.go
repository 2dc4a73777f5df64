package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricedomain.Repository {
	return &repo{}
}

const priceColumns = `id, event_id, name, open, close, total, minimum_deposit,
	allow_deposit, deposit_only, online_payment_option, allow_late_payment, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *pricedomain.Price) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO prices (
			id, event_id, name, open, close, total, minimum_deposit,
			allow_deposit, deposit_only, online_payment_option, allow_late_payment, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.EventID,
		p.Name,
		p.Open,
		p.Close,
		p.Total,
		p.MinimumDeposit,
		p.AllowDeposit,
		p.DepositOnly,
		p.OnlinePaymentOption,
		p.AllowLatePayment,
		p.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, eventID, id snowflake.ID) (*pricedomain.Price, error) {
	var p pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT `+priceColumns+` FROM prices WHERE event_id = ? AND id = ?`,
		eventID,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]pricedomain.Price, error) {
	var items []pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT `+priceColumns+` FROM prices WHERE event_id = ? ORDER BY open ASC, id ASC`,
		eventID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListOpenByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, now time.Time) ([]pricedomain.Price, error) {
	var items []pricedomain.Price
	err := db.WithContext(ctx).Raw(
		`SELECT `+priceColumns+` FROM prices
		 WHERE event_id = ? AND open <= ? AND close > ?
		 ORDER BY open ASC, id ASC`,
		eventID,
		now,
		now,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
