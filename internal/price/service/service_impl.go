package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	"github.com/smallbiznis/rosterly/internal/clock"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      pricedomain.Repository
	EventRepo eventdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      pricedomain.Repository
	eventRepo eventdomain.Repository
}

func New(p Params) pricedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("price.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		eventRepo: p.EventRepo,
	}
}

func (s *Service) Create(ctx context.Context, eventID snowflake.ID, req pricedomain.CreateRequest) (*pricedomain.Price, error) {
	if eventID == 0 {
		return nil, pricedomain.ErrInvalidEvent
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, pricedomain.ErrInvalidName
	}
	if !req.Close.After(req.Open) {
		return nil, pricedomain.ErrInvalidWindow
	}
	if req.Total < 0 || req.MinimumDeposit < 0 || req.MinimumDeposit > req.Total {
		return nil, pricedomain.ErrInvalidTotal
	}
	option, err := parseOption(req.OnlinePaymentOption)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventdomain.ErrNotFound
	}
	if affiliateID, ok := affiliatectx.AffiliateIDFromContext(ctx); ok && affiliateID != 0 && affiliateID != event.AffiliateID {
		return nil, eventdomain.ErrAffiliateMismatch
	}

	price := &pricedomain.Price{
		ID:                  s.genID.Generate(),
		EventID:             event.ID,
		Name:                strings.TrimSpace(req.Name),
		Open:                req.Open.UTC(),
		Close:               req.Close.UTC(),
		Total:               req.Total,
		MinimumDeposit:      req.MinimumDeposit,
		AllowDeposit:        req.AllowDeposit,
		DepositOnly:         req.DepositOnly,
		OnlinePaymentOption: option,
		AllowLatePayment:    req.AllowLatePayment,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, price); err != nil {
		return nil, err
	}

	s.log.Info("price created",
		zap.Int64("event_id", int64(event.ID)),
		zap.Int64("price_id", int64(price.ID)),
		zap.Int64("total", price.Total),
	)
	return price, nil
}

func parseOption(option pricedomain.OnlinePaymentOption) (pricedomain.OnlinePaymentOption, error) {
	if option == "" {
		return pricedomain.OptionNone, nil
	}
	switch option {
	case pricedomain.OptionNone,
		pricedomain.OptionMinimumDeposit,
		pricedomain.OptionSpecificDeposit,
		pricedomain.OptionNoMinimum,
		pricedomain.OptionNoPayment:
		return option, nil
	default:
		return "", pricedomain.ErrInvalidOption
	}
}

func (s *Service) CurrentForEvent(ctx context.Context, eventID snowflake.ID) ([]pricedomain.Price, error) {
	if eventID == 0 {
		return nil, pricedomain.ErrInvalidEvent
	}
	return s.repo.ListOpenByEvent(ctx, s.db, eventID, s.clock.Now())
}

func (s *Service) ForEvent(ctx context.Context, eventID snowflake.ID) ([]pricedomain.Price, error) {
	if eventID == 0 {
		return nil, pricedomain.ErrInvalidEvent
	}
	return s.repo.ListByEvent(ctx, s.db, eventID)
}

func (s *Service) Get(ctx context.Context, eventID, priceID snowflake.ID) (*pricedomain.Price, error) {
	if eventID == 0 {
		return nil, pricedomain.ErrInvalidEvent
	}
	p, err := s.repo.FindByID(ctx, s.db, eventID, priceID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pricedomain.ErrNotFound
	}
	return p, nil
}
