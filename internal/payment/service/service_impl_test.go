package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rosterly/internal/clock"
	"github.com/smallbiznis/rosterly/internal/config"
	creditdomain "github.com/smallbiznis/rosterly/internal/credit/domain"
	creditrepository "github.com/smallbiznis/rosterly/internal/credit/repository"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	eventrepository "github.com/smallbiznis/rosterly/internal/event/repository"
	eventservice "github.com/smallbiznis/rosterly/internal/event/service"
	"github.com/smallbiznis/rosterly/internal/events"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
	"github.com/smallbiznis/rosterly/internal/payment/gateway"
	paymentrepository "github.com/smallbiznis/rosterly/internal/payment/repository"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	personrepository "github.com/smallbiznis/rosterly/internal/person/repository"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	pricerepository "github.com/smallbiznis/rosterly/internal/price/repository"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	regrepository "github.com/smallbiznis/rosterly/internal/registration/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// failingProcessor simulates a gateway that rejects every refund.
type failingProcessor struct{}

func (failingProcessor) Provider() string { return "testpay" }

func (failingProcessor) Refund(ctx context.Context, audit *paymentdomain.RegistrationAudit, amount int64) error {
	return errors.New("declined by processor")
}

type fixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	clk         *clock.FakeClock
	svc         paymentdomain.Service
	affiliateID snowflake.ID
	seq         int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&persondomain.Person{},
		&eventdomain.Event{},
		&pricedomain.Price{},
		&regdomain.Registration{},
		&paymentdomain.RegistrationAudit{},
		&paymentdomain.Payment{},
		&creditdomain.Credit{},
		&events.Record{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	holder := config.NewStaticRegistrationConfigHolder(config.DefaultRegistrationConfig())
	logger := zap.NewNop()

	eventSvc := eventservice.New(eventservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clk,
		Repo:  eventrepository.Provide(),
	})

	svc := New(Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      clk,
		Config:     holder,
		Repo:       paymentrepository.Provide(),
		RegRepo:    regrepository.Provide(),
		EventRepo:  eventrepository.Provide(),
		EventSvc:   eventSvc,
		PriceRepo:  pricerepository.Provide(),
		PersonRepo: personrepository.Provide(),
		CreditRepo: creditrepository.Provide(),
		Gateways:   gateway.NewRegistry(gateway.NewManualProcessor(), failingProcessor{}),
		Publisher:  events.NewOutboxPublisher(node),
	})

	return &fixture{
		db:          db,
		node:        node,
		clk:         clk,
		svc:         svc,
		affiliateID: node.Generate(),
	}
}

func (f *fixture) seedEvent(t *testing.T, affiliateID snowflake.ID, mut func(*eventdomain.Event)) *eventdomain.Event {
	t.Helper()
	f.seq++
	event := &eventdomain.Event{
		ID:          f.node.Generate(),
		AffiliateID: affiliateID,
		EventType:   eventdomain.TypeIndividual,
		Name:        fmt.Sprintf("Winter Open %d", f.seq),
		Slug:        fmt.Sprintf("winter-open-%d", f.seq),
		Open:        f.clk.Now().Add(-24 * time.Hour),
		Close:       f.clk.Now().Add(30 * 24 * time.Hour),
		OpenCap:     eventdomain.CapUnlimited,
		WomenCap:    eventdomain.CapUnlimited,
		CreatedAt:   f.clk.Now(),
	}
	if mut != nil {
		mut(event)
	}
	require.NoError(t, f.db.Create(event).Error)
	return event
}

func (f *fixture) seedPrice(t *testing.T, eventID snowflake.ID, total int64) *pricedomain.Price {
	t.Helper()
	f.seq++
	price := &pricedomain.Price{
		ID:                  f.node.Generate(),
		EventID:             eventID,
		Name:                fmt.Sprintf("Standard %d", f.seq),
		Open:                f.clk.Now().Add(-24 * time.Hour),
		Close:               f.clk.Now().Add(30 * 24 * time.Hour),
		Total:               total,
		OnlinePaymentOption: pricedomain.OptionNoMinimum,
		CreatedAt:           f.clk.Now(),
	}
	require.NoError(t, f.db.Create(price).Error)
	return price
}

func (f *fixture) seedPerson(t *testing.T) *persondomain.Person {
	t.Helper()
	f.seq++
	person := &persondomain.Person{
		ID:                f.node.Generate(),
		Name:              fmt.Sprintf("Skater %d", f.seq),
		RosterDesignation: "open",
		CreatedAt:         f.clk.Now(),
	}
	require.NoError(t, f.db.Create(person).Error)
	return person
}

func (f *fixture) seedRegistration(t *testing.T, eventID, personID, priceID snowflake.ID, status regdomain.Status) *regdomain.Registration {
	t.Helper()
	reg := &regdomain.Registration{
		ID:         f.node.Generate(),
		EventID:    eventID,
		PersonID:   personID,
		PriceID:    priceID,
		Status:     status,
		CreatedAt:  f.clk.Now(),
		ModifiedAt: f.clk.Now(),
	}
	require.NoError(t, f.db.Create(reg).Error)
	return reg
}

func (f *fixture) seedPayment(t *testing.T, registrationID snowflake.ID, amount int64, mut func(*paymentdomain.Payment)) *paymentdomain.Payment {
	t.Helper()
	entry := &paymentdomain.Payment{
		ID:             f.node.Generate(),
		RegistrationID: registrationID,
		PaymentType:    paymentdomain.TypeDeposit,
		Amount:         amount,
		PaymentMethod:  "offline",
		CreatedAt:      f.clk.Now(),
	}
	if mut != nil {
		mut(entry)
	}
	require.NoError(t, f.db.Create(entry).Error)
	return entry
}

// ledgerBundle seeds event, price, person and registration in one call.
func (f *fixture) seedLedger(t *testing.T, total int64, status regdomain.Status) *regdomain.Registration {
	t.Helper()
	event := f.seedEvent(t, f.affiliateID, nil)
	price := f.seedPrice(t, event.ID, total)
	person := f.seedPerson(t)
	return f.seedRegistration(t, event.ID, person.ID, price.ID, status)
}

func (f *fixture) registrationStatus(t *testing.T, id snowflake.ID) regdomain.Status {
	t.Helper()
	var reg regdomain.Registration
	require.NoError(t, f.db.First(&reg, "id = ?", id).Error)
	return reg.Status
}

func (f *fixture) ledgerCount(t *testing.T, registrationID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Where("registration_id = ?", registrationID).Count(&count).Error)
	return count
}

func TestPayLedgerAccumulation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.seedLedger(t, 10000, regdomain.StatusPending)

	first, err := f.svc.Pay(ctx, reg.ID, paymentdomain.PayRequest{Amount: 5000, PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.TypeDeposit, first.PaymentType)
	assert.Equal(t, regdomain.StatusPartiallyPaid, f.registrationStatus(t, reg.ID))

	// the ledger must never exceed the price total
	_, err = f.svc.Pay(ctx, reg.ID, paymentdomain.PayRequest{Amount: 6000, PaymentMethod: "card"})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountInvalid)

	second, err := f.svc.Pay(ctx, reg.ID, paymentdomain.PayRequest{Amount: 5000, PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.TypeRemainingBalance, second.PaymentType)
	assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, reg.ID))

	_, err = f.svc.Pay(ctx, reg.ID, paymentdomain.PayRequest{Amount: 1, PaymentMethod: "card"})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountInvalid)

	_, err = f.svc.Pay(ctx, reg.ID, paymentdomain.PayRequest{Amount: 0})
	assert.ErrorIs(t, err, paymentdomain.ErrAmountInvalid)

	_, err = f.svc.Pay(ctx, f.node.Generate(), paymentdomain.PayRequest{Amount: 100})
	assert.ErrorIs(t, err, regdomain.ErrNotFound)
}

func TestPayCancelledRegistration(t *testing.T) {
	f := newFixture(t)
	reg := f.seedLedger(t, 10000, regdomain.StatusCancelled)

	_, err := f.svc.Pay(context.Background(), reg.ID, paymentdomain.PayRequest{Amount: 5000})
	assert.ErrorIs(t, err, regdomain.ErrCancelled)
	assert.Equal(t, int64(0), f.ledgerCount(t, reg.ID))
}

func TestPayCapacityConflict(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, f.affiliateID, func(e *eventdomain.Event) { e.OpenCap = 1 })
	price := f.seedPrice(t, event.ID, 10000)
	occupant := f.seedPerson(t)
	f.seedRegistration(t, event.ID, occupant.ID, price.ID, regdomain.StatusConfirmed)

	payer := f.seedPerson(t)
	reg := f.seedRegistration(t, event.ID, payer.ID, price.ID, regdomain.StatusPending)

	_, err := f.svc.Pay(context.Background(), reg.ID, paymentdomain.PayRequest{Amount: 5000})
	assert.ErrorIs(t, err, paymentdomain.ErrCapacityConflict)
	assert.Equal(t, int64(0), f.ledgerCount(t, reg.ID))
	assert.Equal(t, regdomain.StatusPending, f.registrationStatus(t, reg.ID))
}

func TestRedeemCreditClamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.seedLedger(t, 10000, regdomain.StatusPartiallyPaid)
	f.seedPayment(t, reg.ID, 7000, nil)

	credit := &creditdomain.Credit{
		ID:          f.node.Generate(),
		AffiliateID: f.affiliateID,
		PersonID:    reg.PersonID,
		Amount:      4000,
		CreatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.db.Create(credit).Error)

	// asked for 4000 but the registration only owes 3000
	entry, err := f.svc.RedeemCredit(ctx, reg.ID, credit.ID, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), entry.Amount)
	assert.Equal(t, paymentdomain.TypeCreditRedeemed, entry.PaymentType)
	assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, reg.ID))

	var stored creditdomain.Credit
	require.NoError(t, f.db.First(&stored, "id = ?", credit.ID).Error)
	assert.Equal(t, int64(3000), stored.AmountUsed)
	assert.Contains(t, stored.Notes, "applied 3000")

	// nothing left to owe
	_, err = f.svc.RedeemCredit(ctx, reg.ID, credit.ID, 1000)
	assert.ErrorIs(t, err, paymentdomain.ErrNoBalance)
}

func TestRedeemCreditForeignAffiliate(t *testing.T) {
	f := newFixture(t)
	reg := f.seedLedger(t, 10000, regdomain.StatusPending)

	credit := &creditdomain.Credit{
		ID:          f.node.Generate(),
		AffiliateID: f.node.Generate(),
		PersonID:    reg.PersonID,
		Amount:      4000,
		CreatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.db.Create(credit).Error)

	_, err := f.svc.RedeemCredit(context.Background(), reg.ID, credit.ID, 4000)
	assert.ErrorIs(t, err, creditdomain.ErrNotFound)
	assert.Equal(t, int64(0), f.ledgerCount(t, reg.ID))
}

func TestRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("full refund cancels on request", func(t *testing.T) {
		reg := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, reg.ID, 10000, func(p *paymentdomain.Payment) {
			p.PaymentType = paymentdomain.TypeFull
			p.PaymentMethod = "card"
		})

		_, err := f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 15000})
		assert.ErrorIs(t, err, paymentdomain.ErrAlreadySettled)

		entry, err := f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 10000, MarkCancelled: true})
		require.NoError(t, err)
		assert.Equal(t, int64(-10000), entry.Amount)
		assert.Equal(t, paymentdomain.TypeFull, entry.PaymentType)
		assert.Equal(t, "card", entry.PaymentMethod)
		assert.Equal(t, regdomain.StatusCancelled, f.registrationStatus(t, reg.ID))

		var stored paymentdomain.Payment
		require.NoError(t, f.db.First(&stored, "id = ?", original.ID).Error)
		assert.Equal(t, int64(10000), stored.RefundedAmount)

		_, err = f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 1})
		assert.ErrorIs(t, err, paymentdomain.ErrAlreadySettled)
	})

	t.Run("partial refund drops the status back", func(t *testing.T) {
		reg := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, reg.ID, 10000, func(p *paymentdomain.Payment) {
			p.PaymentType = paymentdomain.TypeFull
		})

		_, err := f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 4000})
		require.NoError(t, err)
		assert.Equal(t, regdomain.StatusPartiallyPaid, f.registrationStatus(t, reg.ID))
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, err := f.svc.Refund(ctx, f.node.Generate(), paymentdomain.RefundRequest{Amount: 100})
		assert.ErrorIs(t, err, paymentdomain.ErrNotFound)
	})
}

func TestRefundOnline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("processor failure rolls the refund back", func(t *testing.T) {
		reg := f.seedLedger(t, 10000, regdomain.StatusConfirmed)

		audit := &paymentdomain.RegistrationAudit{
			ID:          f.node.Generate(),
			Provider:    "testpay",
			OrderID:     "order-1",
			ChargeTotal: 10000,
			CreatedAt:   f.clk.Now(),
		}
		require.NoError(t, f.db.Create(audit).Error)
		original := f.seedPayment(t, reg.ID, 10000, func(p *paymentdomain.Payment) {
			p.PaymentType = paymentdomain.TypeFull
			p.PaymentMethod = "testpay"
			p.RegistrationAuditID = &audit.ID
		})

		_, err := f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 10000, Online: true})
		assert.ErrorIs(t, err, paymentdomain.ErrGatewayRefundFailed)

		assert.Equal(t, int64(1), f.ledgerCount(t, reg.ID))
		assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, reg.ID))

		var stored paymentdomain.Payment
		require.NoError(t, f.db.First(&stored, "id = ?", original.ID).Error)
		assert.Equal(t, int64(0), stored.RefundedAmount)
	})

	t.Run("online refund without an audit reference", func(t *testing.T) {
		reg := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, reg.ID, 10000, nil)

		_, err := f.svc.Refund(ctx, original.ID, paymentdomain.RefundRequest{Amount: 10000, Online: true})
		assert.ErrorIs(t, err, paymentdomain.ErrNoAuditReference)
	})
}

func TestCreditBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
	original := f.seedPayment(t, reg.ID, 10000, func(p *paymentdomain.Payment) {
		p.PaymentType = paymentdomain.TypeFull
	})

	entry, err := f.svc.CreditBack(ctx, original.ID, paymentdomain.CreditBackRequest{Amount: 6000})
	require.NoError(t, err)
	assert.Equal(t, int64(-6000), entry.Amount)
	assert.Equal(t, "credit", entry.PaymentMethod)
	assert.Equal(t, regdomain.StatusPartiallyPaid, f.registrationStatus(t, reg.ID))

	var credit creditdomain.Credit
	require.NoError(t, f.db.First(&credit, "person_id = ?", reg.PersonID).Error)
	assert.Equal(t, f.affiliateID, credit.AffiliateID)
	assert.Equal(t, int64(6000), credit.Amount)
	assert.Equal(t, int64(0), credit.AmountUsed)
	assert.Contains(t, credit.Notes, "issued 6000 from registration "+reg.ID.String())

	var stored paymentdomain.Payment
	require.NoError(t, f.db.First(&stored, "id = ?", original.ID).Error)
	assert.Equal(t, int64(6000), stored.RefundedAmount)
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("amount clamps to the target balance", func(t *testing.T) {
		source := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, source.ID, 10000, func(p *paymentdomain.Payment) {
			p.PaymentType = paymentdomain.TypeFull
			p.PaymentMethod = "card"
		})
		target := f.seedLedger(t, 6000, regdomain.StatusPending)

		result, err := f.svc.Transfer(ctx, original.ID, paymentdomain.TransferRequest{
			ToRegistrationID: target.ID,
			Amount:           8000,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(6000), result.Amount)
		assert.Equal(t, int64(-6000), result.Outgoing.Amount)
		assert.Equal(t, int64(6000), result.Incoming.Amount)
		assert.Equal(t, paymentdomain.TypeTransfer, result.Outgoing.PaymentType)
		assert.Equal(t, "transfer to registration "+target.ID.String(), result.Outgoing.Notes)

		assert.Equal(t, regdomain.StatusPartiallyPaid, f.registrationStatus(t, source.ID))
		assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, target.ID))

		var stored paymentdomain.Payment
		require.NoError(t, f.db.First(&stored, "id = ?", original.ID).Error)
		assert.Equal(t, int64(6000), stored.RefundedAmount)
	})

	t.Run("target must be unpaid", func(t *testing.T) {
		source := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, source.ID, 10000, nil)
		target := f.seedLedger(t, 6000, regdomain.StatusConfirmed)

		_, err := f.svc.Transfer(ctx, original.ID, paymentdomain.TransferRequest{ToRegistrationID: target.ID, Amount: 1000})
		assert.ErrorIs(t, err, paymentdomain.ErrNotUnpaid)
	})

	t.Run("registrations must share an affiliate", func(t *testing.T) {
		source := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, source.ID, 10000, nil)

		foreign := f.seedEvent(t, f.node.Generate(), nil)
		foreignPrice := f.seedPrice(t, foreign.ID, 6000)
		person := f.seedPerson(t)
		target := f.seedRegistration(t, foreign.ID, person.ID, foreignPrice.ID, regdomain.StatusPending)

		_, err := f.svc.Transfer(ctx, original.ID, paymentdomain.TransferRequest{ToRegistrationID: target.ID, Amount: 1000})
		assert.ErrorIs(t, err, paymentdomain.ErrAffiliateMismatch)
	})

	t.Run("cannot transfer to the same registration", func(t *testing.T) {
		source := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
		original := f.seedPayment(t, source.ID, 10000, nil)

		_, err := f.svc.Transfer(ctx, original.ID, paymentdomain.TransferRequest{ToRegistrationID: source.ID, Amount: 1000})
		assert.ErrorIs(t, err, paymentdomain.ErrAmountInvalid)
	})
}

func TestTransferRollsBackWhenTargetEntryFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source := f.seedLedger(t, 10000, regdomain.StatusConfirmed)
	original := f.seedPayment(t, source.ID, 10000, func(p *paymentdomain.Payment) {
		p.PaymentType = paymentdomain.TypeFull
		p.PaymentMethod = "card"
	})
	target := f.seedLedger(t, 6000, regdomain.StatusPending)

	// abort the incoming insert after the outgoing entry has been
	// written, so the whole transfer must roll back
	require.NoError(t, f.db.Exec(fmt.Sprintf(`
		CREATE TRIGGER reject_target_entry BEFORE INSERT ON payments
		WHEN NEW.registration_id = %d
		BEGIN
			SELECT RAISE(ABORT, 'target entry rejected');
		END`, target.ID)).Error)

	_, err := f.svc.Transfer(ctx, original.ID, paymentdomain.TransferRequest{
		ToRegistrationID: target.ID,
		Amount:           6000,
	})
	require.Error(t, err)

	assert.Equal(t, int64(1), f.ledgerCount(t, source.ID))
	assert.Equal(t, int64(0), f.ledgerCount(t, target.ID))
	assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, source.ID))
	assert.Equal(t, regdomain.StatusPending, f.registrationStatus(t, target.ID))

	var stored paymentdomain.Payment
	require.NoError(t, f.db.First(&stored, "id = ?", original.ID).Error)
	assert.Equal(t, int64(0), stored.RefundedAmount)
}

func TestProcessGatewayReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("settles the whole cart", func(t *testing.T) {
		first := f.seedLedger(t, 6000, regdomain.StatusPending)
		second := f.seedLedger(t, 10000, regdomain.StatusPartiallyPaid)
		f.seedPayment(t, second.ID, 4000, nil)

		result, err := f.svc.ProcessGatewayReturn(ctx, paymentdomain.GatewayReturn{
			Success:         true,
			Provider:        "testpay",
			OrderID:         "order-9",
			TransactionID:   "txn-9",
			Amount:          12000,
			RegistrationIDs: []snowflake.ID{first.ID, second.ID},
			Payload:         map[string]interface{}{"raw": "body"},
		})
		require.NoError(t, err)
		require.Len(t, result.Payments, 2)

		var audit paymentdomain.RegistrationAudit
		require.NoError(t, f.db.First(&audit, "id = ?", result.AuditID).Error)
		assert.Equal(t, "testpay", audit.Provider)
		assert.Equal(t, int64(12000), audit.ChargeTotal)

		for _, entry := range result.Payments {
			assert.Equal(t, "testpay", entry.PaymentMethod)
			require.NotNil(t, entry.RegistrationAuditID)
			assert.Equal(t, result.AuditID, *entry.RegistrationAuditID)
		}

		assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, first.ID))
		assert.Equal(t, regdomain.StatusConfirmed, f.registrationStatus(t, second.ID))
	})

	t.Run("charge must match the cart balance", func(t *testing.T) {
		reg := f.seedLedger(t, 6000, regdomain.StatusPending)

		_, err := f.svc.ProcessGatewayReturn(ctx, paymentdomain.GatewayReturn{
			Success:         true,
			Provider:        "testpay",
			Amount:          5000,
			RegistrationIDs: []snowflake.ID{reg.ID},
		})
		assert.ErrorIs(t, err, paymentdomain.ErrAmountInvalid)
		assert.Equal(t, int64(0), f.ledgerCount(t, reg.ID))
		assert.Equal(t, regdomain.StatusPending, f.registrationStatus(t, reg.ID))
	})

	t.Run("declined charge writes nothing", func(t *testing.T) {
		reg := f.seedLedger(t, 6000, regdomain.StatusPending)

		_, err := f.svc.ProcessGatewayReturn(ctx, paymentdomain.GatewayReturn{
			Success:         false,
			Provider:        "testpay",
			Amount:          6000,
			RegistrationIDs: []snowflake.ID{reg.ID},
		})
		assert.ErrorIs(t, err, paymentdomain.ErrGatewayDeclined)
		assert.Equal(t, int64(0), f.ledgerCount(t, reg.ID))
	})

	t.Run("cancelled registration aborts the cart", func(t *testing.T) {
		reg := f.seedLedger(t, 6000, regdomain.StatusCancelled)

		_, err := f.svc.ProcessGatewayReturn(ctx, paymentdomain.GatewayReturn{
			Success:         true,
			Provider:        "testpay",
			Amount:          6000,
			RegistrationIDs: []snowflake.ID{reg.ID},
		})
		assert.ErrorIs(t, err, regdomain.ErrCancelled)
	})
}
