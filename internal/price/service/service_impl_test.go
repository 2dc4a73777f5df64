package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	"github.com/smallbiznis/rosterly/internal/clock"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	eventrepository "github.com/smallbiznis/rosterly/internal/event/repository"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	pricerepository "github.com/smallbiznis/rosterly/internal/price/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	clk         *clock.FakeClock
	svc         pricedomain.Service
	affiliateID snowflake.ID
	eventID     snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&eventdomain.Event{}, &pricedomain.Price{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Repo:      pricerepository.Provide(),
		EventRepo: eventrepository.Provide(),
	})

	affiliateID := node.Generate()
	event := &eventdomain.Event{
		ID:          node.Generate(),
		AffiliateID: affiliateID,
		EventType:   eventdomain.TypeIndividual,
		Name:        "City Criterium",
		Slug:        "city-criterium",
		Open:        clk.Now().Add(-24 * time.Hour),
		Close:       clk.Now().Add(30 * 24 * time.Hour),
		OpenCap:     eventdomain.CapUnlimited,
		WomenCap:    eventdomain.CapUnlimited,
		CreatedAt:   clk.Now(),
	}
	require.NoError(t, db.Create(event).Error)

	return &fixture{db: db, node: node, clk: clk, svc: svc, affiliateID: affiliateID, eventID: event.ID}
}

func (f *fixture) ctx() context.Context {
	return affiliatectx.WithAffiliateID(context.Background(), f.affiliateID)
}

func TestCreatePrice(t *testing.T) {
	f := newFixture(t)
	open := f.clk.Now()
	close := open.Add(14 * 24 * time.Hour)

	t.Run("creates with explicit option", func(t *testing.T) {
		price, err := f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{
			Name:                "Early Bird",
			Open:                open,
			Close:               close,
			Total:               12000,
			MinimumDeposit:      4000,
			AllowDeposit:        true,
			OnlinePaymentOption: pricedomain.OptionMinimumDeposit,
		})
		require.NoError(t, err)
		assert.Equal(t, pricedomain.OptionMinimumDeposit, price.OnlinePaymentOption)
		assert.True(t, price.OpenAt(f.clk.Now()))
	})

	t.Run("blank option defaults to none", func(t *testing.T) {
		price, err := f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{
			Name:  "Standard",
			Open:  open,
			Close: close,
			Total: 15000,
		})
		require.NoError(t, err)
		assert.Equal(t, pricedomain.OptionNone, price.OnlinePaymentOption)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{Name: " ", Open: open, Close: close, Total: 100})
		assert.ErrorIs(t, err, pricedomain.ErrInvalidName)

		_, err = f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{Name: "Backwards", Open: close, Close: open, Total: 100})
		assert.ErrorIs(t, err, pricedomain.ErrInvalidWindow)

		_, err = f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{Name: "Negative", Open: open, Close: close, Total: -100})
		assert.ErrorIs(t, err, pricedomain.ErrInvalidTotal)

		_, err = f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{Name: "Deposit beyond total", Open: open, Close: close, Total: 100, MinimumDeposit: 200})
		assert.ErrorIs(t, err, pricedomain.ErrInvalidTotal)

		_, err = f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{Name: "Odd option", Open: open, Close: close, Total: 100, OnlinePaymentOption: "maybe"})
		assert.ErrorIs(t, err, pricedomain.ErrInvalidOption)

		_, err = f.svc.Create(f.ctx(), f.node.Generate(), pricedomain.CreateRequest{Name: "Lost", Open: open, Close: close, Total: 100})
		assert.ErrorIs(t, err, eventdomain.ErrNotFound)
	})

	t.Run("foreign affiliate cannot attach a price", func(t *testing.T) {
		other := affiliatectx.WithAffiliateID(context.Background(), f.node.Generate())
		_, err := f.svc.Create(other, f.eventID, pricedomain.CreateRequest{Name: "Poached", Open: open, Close: close, Total: 100})
		assert.ErrorIs(t, err, eventdomain.ErrAffiliateMismatch)
	})
}

func TestPriceWindows(t *testing.T) {
	f := newFixture(t)
	now := f.clk.Now()

	openPrice, err := f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{
		Name: "Open Now", Open: now.Add(-time.Hour), Close: now.Add(time.Hour), Total: 100,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx(), f.eventID, pricedomain.CreateRequest{
		Name: "Opens Later", Open: now.Add(time.Hour), Close: now.Add(2 * time.Hour), Total: 100,
	})
	require.NoError(t, err)

	all, err := f.svc.ForEvent(f.ctx(), f.eventID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	current, err := f.svc.CurrentForEvent(f.ctx(), f.eventID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, openPrice.ID, current[0].ID)

	got, err := f.svc.Get(f.ctx(), f.eventID, openPrice.ID)
	require.NoError(t, err)
	assert.Equal(t, openPrice.Name, got.Name)

	_, err = f.svc.Get(f.ctx(), f.eventID, f.node.Generate())
	assert.ErrorIs(t, err, pricedomain.ErrNotFound)
}
