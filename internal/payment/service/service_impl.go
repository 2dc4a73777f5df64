package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/clock"
	"github.com/smallbiznis/rosterly/internal/config"
	creditdomain "github.com/smallbiznis/rosterly/internal/credit/domain"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"github.com/smallbiznis/rosterly/internal/events"
	"github.com/smallbiznis/rosterly/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
	"github.com/smallbiznis/rosterly/internal/payment/gateway"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// gatewayCallTimeout bounds the processor round trip made inside the
// refund transaction so a stalled gateway cannot pin the row locks.
const gatewayCallTimeout = 10 * time.Second

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     *config.RegistrationConfigHolder
	Repo       paymentdomain.Repository
	RegRepo    regdomain.Repository
	EventRepo  eventdomain.Repository
	EventSvc   eventdomain.Service
	PriceRepo  pricedomain.Repository
	PersonRepo persondomain.Repository
	CreditRepo creditdomain.Repository
	Gateways   *gateway.Registry
	Publisher  events.Publisher
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	config     *config.RegistrationConfigHolder
	repo       paymentdomain.Repository
	regRepo    regdomain.Repository
	eventRepo  eventdomain.Repository
	eventSvc   eventdomain.Service
	priceRepo  pricedomain.Repository
	personRepo persondomain.Repository
	creditRepo creditdomain.Repository
	gateways   *gateway.Registry
	publisher  events.Publisher
	metrics    *metrics.Metrics
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		config:     p.Config,
		repo:       p.Repo,
		regRepo:    p.RegRepo,
		eventRepo:  p.EventRepo,
		eventSvc:   p.EventSvc,
		priceRepo:  p.PriceRepo,
		personRepo: p.PersonRepo,
		creditRepo: p.CreditRepo,
		gateways:   p.Gateways,
		publisher:  p.Publisher,
		metrics:    p.Metrics,
	}
}

// ledgerView is a registration with everything the ledger needs to
// reason about it, loaded under the caller's transaction with the
// registration row locked.
type ledgerView struct {
	reg   *regdomain.Registration
	event *eventdomain.Event
	price *pricedomain.Price
	paid  int64
}

func (v *ledgerView) balance() int64 { return v.price.Total - v.paid }

func (s *Service) loadForUpdate(ctx context.Context, tx *gorm.DB, registrationID snowflake.ID) (*ledgerView, error) {
	reg, err := s.regRepo.FindByIDForUpdate(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, regdomain.ErrNotFound
	}

	event, err := s.eventRepo.FindByID(ctx, tx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventdomain.ErrNotFound
	}

	price, err := s.priceRepo.FindByID(ctx, tx, reg.EventID, reg.PriceID)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, pricedomain.ErrNotFound
	}

	paid, err := s.regRepo.LedgerTotal(ctx, tx, reg.ID)
	if err != nil {
		return nil, err
	}

	return &ledgerView{reg: reg, event: event, price: price, paid: paid}, nil
}

// applyEntry writes the entry, recomputes the registration status from
// the new ledger total and persists it when it changed. Returns the
// derived status.
func (s *Service) applyEntry(ctx context.Context, tx *gorm.DB, view *ledgerView, entry *paymentdomain.Payment) (regdomain.Status, error) {
	if err := s.repo.InsertEntry(ctx, tx, entry); err != nil {
		return "", err
	}
	view.paid += entry.Amount

	status := regdomain.DeriveStatus(view.reg.Status, view.price.Total, view.paid)
	if status != view.reg.Status {
		if err := s.regRepo.UpdateStatus(ctx, tx, view.reg.ID, status, s.clock.Now()); err != nil {
			return "", err
		}
		view.reg.Status = status
	}
	return status, nil
}

// ensureRoom re-checks category capacity inside the transaction before
// the first occupying payment lands on a pending or waiting
// registration. Two payers racing for the last slot resolve here.
func (s *Service) ensureRoom(ctx context.Context, tx *gorm.DB, view *ledgerView) error {
	if view.reg.Status.Occupies() {
		return nil
	}

	person, err := s.personRepo.FindByID(ctx, tx, view.reg.PersonID)
	if err != nil {
		return err
	}
	category := eventdomain.CategoryOpen
	if person != nil {
		category = eventdomain.RosterCategory(person.RosterDesignation)
	}

	occ, err := s.eventSvc.EvaluateCapacityTx(ctx, tx, view.reg.EventID, category, view.reg.ID)
	if err != nil {
		return err
	}
	if !occ.HasRoom() {
		return paymentdomain.ErrCapacityConflict
	}
	return nil
}

func (s *Service) Pay(ctx context.Context, registrationID snowflake.ID, req paymentdomain.PayRequest) (*paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	var entry *paymentdomain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		view, err := s.loadForUpdate(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if view.reg.Status == regdomain.StatusCancelled {
			return regdomain.ErrCancelled
		}
		if view.paid+req.Amount > view.price.Total {
			return paymentdomain.ErrAmountInvalid
		}
		if err := s.ensureRoom(ctx, tx, view); err != nil {
			return err
		}

		paymentType := req.PaymentType
		if paymentType == "" {
			paymentType = paymentdomain.InferType(view.price.Total, view.paid, req.Amount)
		}

		entry = &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: view.reg.ID,
			PaymentType:    paymentType,
			Amount:         req.Amount,
			PaymentMethod:  req.PaymentMethod,
			Notes:          req.Notes,
			CreatedAt:      s.clock.Now(),
		}
		status, err := s.applyEntry(ctx, tx, view, entry)
		if err != nil {
			return err
		}

		if err := s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicPaymentReceived, map[string]interface{}{
			"registration_id": view.reg.ID.String(),
			"payment_id":      entry.ID.String(),
			"amount":          entry.Amount,
			"payment_type":    string(entry.PaymentType),
		}); err != nil {
			return err
		}
		if status == regdomain.StatusConfirmed {
			return s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicRegistrationConfirmed, map[string]interface{}{
				"registration_id": view.reg.ID.String(),
				"event_id":        view.event.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, string(entry.PaymentType), entry.PaymentMethod)
	}
	s.log.Info("payment recorded",
		zap.Int64("registration_id", int64(registrationID)),
		zap.Int64("payment_id", int64(entry.ID)),
		zap.Int64("amount", entry.Amount),
		zap.String("payment_type", string(entry.PaymentType)),
	)
	return entry, nil
}

func (s *Service) RedeemCredit(ctx context.Context, registrationID, creditID snowflake.ID, requestedAmount int64) (*paymentdomain.Payment, error) {
	if requestedAmount <= 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	var entry *paymentdomain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		view, err := s.loadForUpdate(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if view.reg.Status == regdomain.StatusCancelled {
			return regdomain.ErrCancelled
		}

		credit, err := s.creditRepo.FindByIDForUpdate(ctx, tx, view.event.AffiliateID, creditID)
		if err != nil {
			return err
		}
		if credit == nil {
			return creditdomain.ErrNotFound
		}

		// the ledger never overshoots: spend the smallest of what was
		// asked, what the registration still owes and what the credit
		// still holds
		amount := requestedAmount
		if balance := view.balance(); balance < amount {
			amount = balance
		}
		if balance := credit.Balance(); balance < amount {
			amount = balance
		}
		if amount <= 0 {
			return paymentdomain.ErrNoBalance
		}

		if err := s.ensureRoom(ctx, tx, view); err != nil {
			return err
		}

		now := s.clock.Now()
		note := fmt.Sprintf("registration %s", view.reg.ID.String())
		if err := credit.Apply(amount, note, now); err != nil {
			return err
		}
		if err := s.creditRepo.UpdateUsage(ctx, tx, credit); err != nil {
			return err
		}

		entry = &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: view.reg.ID,
			PaymentType:    paymentdomain.TypeCreditRedeemed,
			Amount:         amount,
			PaymentMethod:  "credit_redeemed",
			Notes:          fmt.Sprintf("credit %s", credit.ID.String()),
			CreatedAt:      now,
		}
		status, err := s.applyEntry(ctx, tx, view, entry)
		if err != nil {
			return err
		}

		if err := s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicPaymentReceived, map[string]interface{}{
			"registration_id": view.reg.ID.String(),
			"payment_id":      entry.ID.String(),
			"credit_id":       credit.ID.String(),
			"amount":          entry.Amount,
			"payment_type":    string(entry.PaymentType),
		}); err != nil {
			return err
		}
		if status == regdomain.StatusConfirmed {
			return s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicRegistrationConfirmed, map[string]interface{}{
				"registration_id": view.reg.ID.String(),
				"event_id":        view.event.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordCreditRedeemed(ctx)
	}
	s.log.Info("credit redeemed",
		zap.Int64("registration_id", int64(registrationID)),
		zap.Int64("credit_id", int64(creditID)),
		zap.Int64("amount", entry.Amount),
	)
	return entry, nil
}

func (s *Service) Refund(ctx context.Context, paymentID snowflake.ID, req paymentdomain.RefundRequest) (*paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	var entry *paymentdomain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		original, err := s.repo.FindByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if original == nil {
			return paymentdomain.ErrNotFound
		}
		if req.Amount > original.Refundable() {
			return paymentdomain.ErrAlreadySettled
		}

		view, err := s.loadForUpdate(ctx, tx, original.RegistrationID)
		if err != nil {
			return err
		}

		if req.Online {
			if err := s.refundThroughGateway(ctx, tx, original, req.Amount); err != nil {
				return err
			}
		}

		method := req.PaymentMethod
		if method == "" {
			method = original.PaymentMethod
		}
		entry = &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: original.RegistrationID,
			PaymentType:    original.PaymentType,
			Amount:         -req.Amount,
			PaymentMethod:  method,
			Notes:          req.Notes,
			CreatedAt:      s.clock.Now(),
		}
		if _, err := s.applyEntry(ctx, tx, view, entry); err != nil {
			return err
		}
		if err := s.repo.UpdateRefunded(ctx, tx, original.ID, original.RefundedAmount+req.Amount); err != nil {
			return err
		}

		if req.MarkCancelled {
			if err := s.regRepo.UpdateStatus(ctx, tx, view.reg.ID, regdomain.StatusCancelled, s.clock.Now()); err != nil {
				return err
			}
			view.reg.Status = regdomain.StatusCancelled
		}

		return s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicPaymentRefunded, map[string]interface{}{
			"registration_id": view.reg.ID.String(),
			"payment_id":      original.ID.String(),
			"refund_id":       entry.ID.String(),
			"amount":          req.Amount,
			"online":          req.Online,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRefund(ctx, entry.PaymentMethod)
	}
	s.log.Info("payment refunded",
		zap.Int64("payment_id", int64(paymentID)),
		zap.Int64("amount", req.Amount),
		zap.Bool("online", req.Online),
	)
	return entry, nil
}

// refundThroughGateway pushes an online refund to the processor that
// recorded the original charge. Runs inside the refund transaction; a
// processor failure aborts the whole refund.
func (s *Service) refundThroughGateway(ctx context.Context, tx *gorm.DB, original *paymentdomain.Payment, amount int64) error {
	if original.RegistrationAuditID == nil {
		return paymentdomain.ErrNoAuditReference
	}
	audit, err := s.repo.FindAuditByID(ctx, tx, *original.RegistrationAuditID)
	if err != nil {
		return err
	}
	if audit == nil {
		return paymentdomain.ErrNoAuditReference
	}

	processor, err := s.gateways.For(audit.Provider)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, gatewayCallTimeout)
	defer cancel()
	if err := processor.Refund(callCtx, audit, amount); err != nil {
		return fmt.Errorf("%w: %v", paymentdomain.ErrGatewayRefundFailed, err)
	}
	return nil
}

func (s *Service) CreditBack(ctx context.Context, paymentID snowflake.ID, req paymentdomain.CreditBackRequest) (*paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	var entry *paymentdomain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		original, err := s.repo.FindByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if original == nil {
			return paymentdomain.ErrNotFound
		}
		if req.Amount > original.Refundable() {
			return paymentdomain.ErrAlreadySettled
		}

		view, err := s.loadForUpdate(ctx, tx, original.RegistrationID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		credit := &creditdomain.Credit{
			ID:          s.genID.Generate(),
			AffiliateID: view.event.AffiliateID,
			PersonID:    view.reg.PersonID,
			Amount:      req.Amount,
			Notes:       fmt.Sprintf("%s: issued %d from registration %s", now.UTC().Format(time.RFC3339), req.Amount, view.reg.ID.String()),
			CreatedAt:   now,
		}
		if err := s.creditRepo.Insert(ctx, tx, credit); err != nil {
			return err
		}

		entry = &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: original.RegistrationID,
			PaymentType:    original.PaymentType,
			Amount:         -req.Amount,
			PaymentMethod:  "credit",
			Notes:          req.Notes,
			CreatedAt:      now,
		}
		if _, err := s.applyEntry(ctx, tx, view, entry); err != nil {
			return err
		}
		if err := s.repo.UpdateRefunded(ctx, tx, original.ID, original.RefundedAmount+req.Amount); err != nil {
			return err
		}

		return s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicCreditIssued, map[string]interface{}{
			"credit_id":       credit.ID.String(),
			"person_id":       view.reg.PersonID.String(),
			"registration_id": view.reg.ID.String(),
			"amount":          req.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordCreditIssued(ctx)
	}
	s.log.Info("refund issued as credit",
		zap.Int64("payment_id", int64(paymentID)),
		zap.Int64("amount", req.Amount),
	)
	return entry, nil
}

func (s *Service) Transfer(ctx context.Context, paymentID snowflake.ID, req paymentdomain.TransferRequest) (*paymentdomain.TransferResult, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	result := &paymentdomain.TransferResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		original, err := s.repo.FindByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if original == nil {
			return paymentdomain.ErrNotFound
		}
		if original.RegistrationID == req.ToRegistrationID {
			return paymentdomain.ErrAmountInvalid
		}

		source, err := s.loadForUpdate(ctx, tx, original.RegistrationID)
		if err != nil {
			return err
		}
		target, err := s.loadForUpdate(ctx, tx, req.ToRegistrationID)
		if err != nil {
			return err
		}

		if source.event.AffiliateID != target.event.AffiliateID {
			return paymentdomain.ErrAffiliateMismatch
		}
		if !statusIn(target.reg.Status, s.config.Get().UnpaidStatuses) {
			return paymentdomain.ErrNotUnpaid
		}

		amount := req.Amount
		if refundable := original.Refundable(); refundable < amount {
			amount = refundable
		}
		if balance := target.balance(); balance < amount {
			amount = balance
		}
		if amount <= 0 {
			return paymentdomain.ErrNoBalance
		}

		now := s.clock.Now()
		outgoing := &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: source.reg.ID,
			PaymentType:    paymentdomain.TypeTransfer,
			Amount:         -amount,
			PaymentMethod:  original.PaymentMethod,
			Notes:          fmt.Sprintf("transfer to registration %s", target.reg.ID.String()),
			CreatedAt:      now,
		}
		if req.Notes != "" {
			outgoing.Notes = req.Notes
		}
		if _, err := s.applyEntry(ctx, tx, source, outgoing); err != nil {
			return err
		}
		if err := s.repo.UpdateRefunded(ctx, tx, original.ID, original.RefundedAmount+amount); err != nil {
			return err
		}

		incoming := &paymentdomain.Payment{
			ID:             s.genID.Generate(),
			RegistrationID: target.reg.ID,
			PaymentType:    paymentdomain.TypeTransfer,
			Amount:         amount,
			PaymentMethod:  original.PaymentMethod,
			Notes:          fmt.Sprintf("transfer from registration %s", source.reg.ID.String()),
			CreatedAt:      now,
		}
		status, err := s.applyEntry(ctx, tx, target, incoming)
		if err != nil {
			return err
		}

		result.Amount = amount
		result.Outgoing = outgoing
		result.Incoming = incoming

		if err := s.publisher.Emit(ctx, tx, target.event.AffiliateID, events.TopicPaymentReceived, map[string]interface{}{
			"registration_id": target.reg.ID.String(),
			"payment_id":      incoming.ID.String(),
			"amount":          amount,
			"payment_type":    string(paymentdomain.TypeTransfer),
		}); err != nil {
			return err
		}
		if status == regdomain.StatusConfirmed {
			return s.publisher.Emit(ctx, tx, target.event.AffiliateID, events.TopicRegistrationConfirmed, map[string]interface{}{
				"registration_id": target.reg.ID.String(),
				"event_id":        target.event.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransfer(ctx)
	}
	s.log.Info("payment transferred",
		zap.Int64("payment_id", int64(paymentID)),
		zap.Int64("to_registration_id", int64(req.ToRegistrationID)),
		zap.Int64("amount", result.Amount),
	)
	return result, nil
}

func (s *Service) ProcessGatewayReturn(ctx context.Context, ret paymentdomain.GatewayReturn) (*paymentdomain.GatewayReturnResult, error) {
	if !ret.Success {
		return nil, paymentdomain.ErrGatewayDeclined
	}
	if ret.Amount <= 0 || len(ret.RegistrationIDs) == 0 {
		return nil, paymentdomain.ErrAmountInvalid
	}

	result := &paymentdomain.GatewayReturnResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		views := make([]*ledgerView, 0, len(ret.RegistrationIDs))
		var owed int64
		for _, id := range ret.RegistrationIDs {
			view, err := s.loadForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if view.reg.Status == regdomain.StatusCancelled {
				return regdomain.ErrCancelled
			}
			views = append(views, view)
			owed += view.balance()
		}
		// the charge must cover exactly what the cart owed; anything
		// else means the gateway and the ledger disagree
		if owed != ret.Amount {
			return paymentdomain.ErrAmountInvalid
		}

		now := s.clock.Now()
		var payload datatypes.JSON
		if ret.Payload != nil {
			body, err := json.Marshal(ret.Payload)
			if err != nil {
				return err
			}
			payload = datatypes.JSON(body)
		}
		audit := &paymentdomain.RegistrationAudit{
			ID:            s.genID.Generate(),
			Provider:      ret.Provider,
			OrderID:       ret.OrderID,
			TransactionID: ret.TransactionID,
			ChargeTotal:   ret.Amount,
			Payload:       payload,
			CreatedAt:     now,
		}
		if err := s.repo.InsertAudit(ctx, tx, audit); err != nil {
			return err
		}
		result.AuditID = audit.ID

		for _, view := range views {
			amount := view.balance()
			if amount <= 0 {
				continue
			}
			if err := s.ensureRoom(ctx, tx, view); err != nil {
				return err
			}
			auditID := audit.ID
			entry := &paymentdomain.Payment{
				ID:                  s.genID.Generate(),
				RegistrationID:      view.reg.ID,
				PaymentType:         paymentdomain.InferType(view.price.Total, view.paid, amount),
				Amount:              amount,
				PaymentMethod:       ret.Provider,
				Notes:               fmt.Sprintf("order %s", ret.OrderID),
				RegistrationAuditID: &auditID,
				CreatedAt:           now,
			}
			status, err := s.applyEntry(ctx, tx, view, entry)
			if err != nil {
				return err
			}
			result.Payments = append(result.Payments, *entry)

			if err := s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicPaymentReceived, map[string]interface{}{
				"registration_id": view.reg.ID.String(),
				"payment_id":      entry.ID.String(),
				"amount":          entry.Amount,
				"payment_type":    string(entry.PaymentType),
				"order_id":        ret.OrderID,
			}); err != nil {
				return err
			}
			if status == regdomain.StatusConfirmed {
				if err := s.publisher.Emit(ctx, tx, view.event.AffiliateID, events.TopicRegistrationConfirmed, map[string]interface{}{
					"registration_id": view.reg.ID.String(),
					"event_id":        view.event.ID.String(),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for i := range result.Payments {
			s.metrics.RecordPayment(ctx, string(result.Payments[i].PaymentType), result.Payments[i].PaymentMethod)
		}
	}
	s.log.Info("gateway return reconciled",
		zap.String("provider", ret.Provider),
		zap.String("order_id", ret.OrderID),
		zap.Int64("amount", ret.Amount),
		zap.Int("entries", len(result.Payments)),
	)
	return result, nil
}

func (s *Service) ListForRegistration(ctx context.Context, registrationID snowflake.ID) ([]paymentdomain.Payment, error) {
	reg, err := s.regRepo.FindByID(ctx, s.db, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, regdomain.ErrNotFound
	}
	return s.repo.ListByRegistration(ctx, s.db, registrationID)
}

func statusIn(status regdomain.Status, statuses []string) bool {
	for _, candidate := range statuses {
		if string(status) == candidate {
			return true
		}
	}
	return false
}
