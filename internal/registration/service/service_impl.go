package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	"github.com/smallbiznis/rosterly/internal/clock"
	"github.com/smallbiznis/rosterly/internal/config"
	"github.com/smallbiznis/rosterly/internal/eligibility"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"github.com/smallbiznis/rosterly/internal/events"
	"github.com/smallbiznis/rosterly/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      *config.RegistrationConfigHolder
	Repo        regdomain.Repository
	EventRepo   eventdomain.Repository
	EventSvc    eventdomain.Service
	PriceRepo   pricedomain.Repository
	PersonRepo  persondomain.Repository
	PaymentRepo paymentdomain.Repository
	Strategies  *eventdomain.StrategyRegistry
	Policy      eligibility.Policy
	Publisher   events.Publisher
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	config      *config.RegistrationConfigHolder
	repo        regdomain.Repository
	eventRepo   eventdomain.Repository
	eventSvc    eventdomain.Service
	priceRepo   pricedomain.Repository
	personRepo  persondomain.Repository
	paymentRepo paymentdomain.Repository
	strategies  *eventdomain.StrategyRegistry
	policy      eligibility.Policy
	publisher   events.Publisher
	metrics     *metrics.Metrics
}

func New(p Params) regdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("registration.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		config:      p.Config,
		repo:        p.Repo,
		eventRepo:   p.EventRepo,
		eventSvc:    p.EventSvc,
		priceRepo:   p.PriceRepo,
		personRepo:  p.PersonRepo,
		paymentRepo: p.PaymentRepo,
		strategies:  p.Strategies,
		policy:      p.Policy,
		publisher:   p.Publisher,
		metrics:     p.Metrics,
	}
}

func (s *Service) Register(ctx context.Context, req regdomain.RegisterRequest) (*regdomain.RegisterResult, error) {
	// stale holds must not count against capacity
	if _, err := s.ExpireReservations(ctx); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventdomain.ErrNotFound
	}
	if affiliateID, ok := affiliatectx.AffiliateIDFromContext(ctx); ok && affiliateID != 0 && affiliateID != event.AffiliateID {
		return nil, eventdomain.ErrAffiliateMismatch
	}

	person, err := s.personRepo.FindByID(ctx, s.db, req.PersonID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, regdomain.ErrInvalidSelection
	}
	category := eventdomain.RosterCategory(person.RosterDesignation)

	price, err := s.resolvePrice(ctx, event.ID, req.PriceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	reg := &regdomain.Registration{
		ID:         s.genID.Generate(),
		EventID:    event.ID,
		PersonID:   person.ID,
		PriceID:    price.ID,
		Status:     regdomain.StatusPending,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	result := &regdomain.RegisterResult{Registration: reg}

	// the capacity read and the write it admits share one transaction;
	// the event row lock inside EvaluateCapacityTx serializes racing
	// registrants so only one of them gets the last slot
	err = s.db.Transaction(func(tx *gorm.DB) error {
		occ, err := s.eventSvc.EvaluateCapacityTx(ctx, tx, event.ID, category, 0)
		if err != nil {
			return err
		}
		waiting := !occ.HasRoom()
		result.Occupancy = occ

		decision, err := s.policy.CanRegister(ctx, eligibility.Check{
			Event:    event,
			Category: category,
			Price:    price,
			Waiting:  waiting,
		})
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return fmt.Errorf("%w: %s", regdomain.ErrNotEligible, decision.Reason)
		}

		if waiting {
			reg.Status = regdomain.StatusWaiting
		}

		// no questions and no payment decision: complete in one step, or
		// persist nothing at all
		autoComplete := !waiting && !event.HasQuestionnaire() && !price.RequiresPaymentDecision()
		if !autoComplete {
			return s.repo.Insert(ctx, tx, reg)
		}

		amount := price.Total
		if price.AllowDeposit && price.MinimumDeposit > 0 {
			amount = price.MinimumDeposit
		}
		reg.Status = regdomain.DeriveStatus(regdomain.StatusPending, price.Total, amount)
		if err := s.repo.Insert(ctx, tx, reg); err != nil {
			return err
		}

		if amount > 0 {
			entry := &paymentdomain.Payment{
				ID:             s.genID.Generate(),
				RegistrationID: reg.ID,
				PaymentType:    paymentdomain.InferType(price.Total, 0, amount),
				Amount:         amount,
				PaymentMethod:  "offline",
				Notes:          s.strategies.For(event).PaymentDescription(event),
				CreatedAt:      now,
			}
			if err := s.paymentRepo.InsertEntry(ctx, tx, entry); err != nil {
				return err
			}
			result.PaymentAmount = amount
		}
		result.AutoCompleted = true

		if reg.Status == regdomain.StatusConfirmed {
			return s.publisher.Emit(ctx, tx, event.AffiliateID, events.TopicRegistrationConfirmed, map[string]interface{}{
				"registration_id": reg.ID.String(),
				"event_id":        event.ID.String(),
				"person_id":       person.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordRegistration(ctx, reg.Status)
	s.log.Info("registration created",
		zap.Int64("registration_id", int64(reg.ID)),
		zap.Int64("event_id", int64(event.ID)),
		zap.String("status", string(reg.Status)),
		zap.Bool("auto_completed", result.AutoCompleted),
	)
	return result, nil
}

func (s *Service) Unregister(ctx context.Context, registrationID snowflake.ID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		reg, err := s.repo.FindByIDForUpdate(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if reg == nil {
			return regdomain.ErrNotFound
		}

		count, err := s.repo.LedgerCount(ctx, tx, reg.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return regdomain.ErrHasPayments
		}

		return s.repo.Delete(ctx, tx, reg.ID)
	})
}

func (s *Service) Get(ctx context.Context, registrationID snowflake.ID) (*regdomain.Registration, error) {
	reg, err := s.repo.FindByID(ctx, s.db, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, regdomain.ErrNotFound
	}
	return reg, nil
}

func (s *Service) Checkout(ctx context.Context, personID snowflake.ID) (*regdomain.CheckoutResult, error) {
	if _, err := s.ExpireReservations(ctx); err != nil {
		return nil, err
	}

	cfg := s.config.Get()
	regs, err := s.repo.ListByPersonWithStatus(ctx, s.db, personID, cfg.UnpaidStatuses)
	if err != nil {
		return nil, err
	}

	affiliateID, _ := affiliatectx.AffiliateIDFromContext(ctx)
	now := s.clock.Now()
	result := &regdomain.CheckoutResult{PersonID: personID}

	for i := range regs {
		reg := &regs[i]
		item, err := s.checkoutItem(ctx, reg, affiliateID, now, cfg)
		if err != nil {
			return nil, err
		}
		if item.BlockedReason == "" {
			result.Payable = append(result.Payable, *item)
		} else {
			result.Blocked = append(result.Blocked, *item)
		}
	}

	return result, nil
}

func (s *Service) checkoutItem(ctx context.Context, reg *regdomain.Registration, affiliateID snowflake.ID, now time.Time, cfg config.RegistrationConfig) (*regdomain.CheckoutItem, error) {
	event, err := s.eventRepo.FindByID(ctx, s.db, reg.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventdomain.ErrNotFound
	}

	price, err := s.priceRepo.FindByID(ctx, s.db, reg.EventID, reg.PriceID)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, pricedomain.ErrNotFound
	}

	paid, err := s.repo.LedgerTotal(ctx, s.db, reg.ID)
	if err != nil {
		return nil, err
	}

	item := &regdomain.CheckoutItem{
		Registration: reg,
		Price:        price,
		Paid:         paid,
		Balance:      price.Total - paid,
	}

	if affiliateID != 0 && event.AffiliateID != affiliateID {
		item.BlockedReason = "this registration belongs to a different affiliate"
		return item, nil
	}

	// a recheck, not a silent downgrade: capacity may have been consumed
	// since this registration was parked on the waiting list
	if reg.Status == regdomain.StatusWaiting {
		person, err := s.personRepo.FindByID(ctx, s.db, reg.PersonID)
		if err != nil {
			return nil, err
		}
		category := eventdomain.CategoryOpen
		if person != nil {
			category = eventdomain.RosterCategory(person.RosterDesignation)
		}
		occ, err := s.eventSvc.EvaluateCapacity(ctx, reg.EventID, category, reg.ID)
		if err != nil {
			return nil, err
		}
		if !occ.HasRoom() {
			item.BlockedReason = "the event is full; this registration is on the waiting list"
			return item, nil
		}
	}

	if price.ClosedAt(now) {
		open, err := s.priceRepo.ListOpenByEvent(ctx, s.db, reg.EventID, now)
		if err != nil {
			return nil, err
		}
		hasAlternative := false
		for i := range open {
			if open[i].ID != price.ID {
				hasAlternative = true
				break
			}
		}
		if hasAlternative {
			item.BlockedReason = "the payment deadline has passed; select a currently open price"
			return item, nil
		}
		if !price.AllowLatePayment && !cfg.AllowLateWithoutAlternative {
			item.BlockedReason = "the payment deadline has passed"
			return item, nil
		}
	}

	if price.DepositOnly && paid > 0 {
		item.BlockedReason = "the deposit has been paid; the remainder is collected offline"
		return item, nil
	}

	if price.OnlinePaymentOption == pricedomain.OptionNoPayment {
		item.BlockedReason = "online payment is not available for this registration"
		return item, nil
	}

	return item, nil
}

func (s *Service) Waiting(ctx context.Context, eventID snowflake.ID) ([]regdomain.Registration, error) {
	if _, err := s.ExpireReservations(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListWaiting(ctx, s.db, eventID)
}

func (s *Service) Unpaid(ctx context.Context) ([]regdomain.DelinquentRow, error) {
	affiliateID, ok := affiliatectx.AffiliateIDFromContext(ctx)
	if !ok || affiliateID == 0 {
		return nil, eventdomain.ErrInvalidAffiliate
	}
	cfg := s.config.Get()
	return s.repo.ListDelinquent(ctx, s.db, affiliateID, cfg.DelinquentStatuses)
}

func (s *Service) ExpireReservations(ctx context.Context) (int, error) {
	cfg := s.config.Get()
	now := s.clock.Now()
	cutoff := now.Add(-time.Duration(cfg.ReservationTTLMinutes) * time.Minute)

	expired, err := s.repo.ExpireStale(ctx, s.db, cutoff, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		if s.metrics != nil {
			s.metrics.RecordReservationsExpired(ctx, expired)
		}
		s.log.Info("expired stale reservations", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) resolvePrice(ctx context.Context, eventID, priceID snowflake.ID) (*pricedomain.Price, error) {
	if priceID != 0 {
		price, err := s.priceRepo.FindByID(ctx, s.db, eventID, priceID)
		if err != nil {
			return nil, err
		}
		if price == nil {
			return nil, regdomain.ErrInvalidSelection
		}
		return price, nil
	}

	open, err := s.priceRepo.ListOpenByEvent(ctx, s.db, eventID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	switch len(open) {
	case 0:
		return nil, regdomain.ErrInvalidSelection
	case 1:
		return &open[0], nil
	default:
		return nil, regdomain.ErrAmbiguousPrice
	}
}

func (s *Service) recordRegistration(ctx context.Context, status regdomain.Status) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRegistration(ctx, string(status))
}
