package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

const paymentColumns = `id, registration_id, payment_type, amount, refunded_amount,
	payment_method, notes, registration_audit_id, created_at`

func (r *repo) InsertEntry(ctx context.Context, db *gorm.DB, entry *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, registration_id, payment_type, amount, refunded_amount,
			payment_method, notes, registration_audit_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RegistrationID,
		entry.PaymentType,
		entry.Amount,
		entry.RefundedAmount,
		entry.PaymentMethod,
		entry.Notes,
		entry.RegistrationAuditID,
		entry.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.Payment, error) {
	return r.find(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.Payment, error) {
	return r.find(ctx, db, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*paymentdomain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	// sqlite has no row locks; the write is still guarded by the tx
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var entry paymentdomain.Payment
	err := db.WithContext(ctx).Raw(query, id).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) UpdateRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, refundedAmount int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET refunded_amount = ? WHERE id = ?`,
		refundedAmount,
		id,
	).Error
}

func (r *repo) ListByRegistration(ctx context.Context, db *gorm.DB, registrationID snowflake.ID) ([]paymentdomain.Payment, error) {
	var items []paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments
		 WHERE registration_id = ? ORDER BY created_at ASC, id ASC`,
		registrationID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindAuditByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.RegistrationAudit, error) {
	var audit paymentdomain.RegistrationAudit
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, order_id, transaction_id, charge_total, payload, created_at
		 FROM registration_audits WHERE id = ?`,
		id,
	).Scan(&audit).Error
	if err != nil {
		return nil, err
	}
	if audit.ID == 0 {
		return nil, nil
	}
	return &audit, nil
}

func (r *repo) InsertAudit(ctx context.Context, db *gorm.DB, audit *paymentdomain.RegistrationAudit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO registration_audits (id, provider, order_id, transaction_id, charge_total, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		audit.ID,
		audit.Provider,
		audit.OrderID,
		audit.TransactionID,
		audit.ChargeTotal,
		audit.Payload,
		audit.CreatedAt,
	).Error
}
