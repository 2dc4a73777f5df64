package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	"github.com/smallbiznis/rosterly/internal/clock"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	eventrepository "github.com/smallbiznis/rosterly/internal/event/repository"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	"github.com/smallbiznis/rosterly/pkg/db/pagination"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	clk         *clock.FakeClock
	svc         eventdomain.Service
	affiliateID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&persondomain.Person{},
		&eventdomain.Event{},
		&regdomain.Registration{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  eventrepository.Provide(),
	})

	return &fixture{db: db, node: node, clk: clk, svc: svc, affiliateID: node.Generate()}
}

func (f *fixture) ctx() context.Context {
	return affiliatectx.WithAffiliateID(context.Background(), f.affiliateID)
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	open := f.clk.Now()
	close := open.Add(30 * 24 * time.Hour)

	t.Run("defaults to unlimited individual", func(t *testing.T) {
		event, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{
			Name:  "Harvest Half Marathon",
			Open:  open,
			Close: close,
		})
		require.NoError(t, err)
		assert.Equal(t, eventdomain.TypeIndividual, event.EventType)
		assert.Equal(t, "harvest-half-marathon", event.Slug)
		assert.Equal(t, eventdomain.CapUnlimited, event.OpenCap)
		assert.Equal(t, eventdomain.CapUnlimited, event.WomenCap)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{
			Name:  "Harvest Half Marathon",
			Open:  open,
			Close: close,
		})
		assert.ErrorIs(t, err, eventdomain.ErrDuplicateEventSlug)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{Name: "  ", Open: open, Close: close})
		assert.ErrorIs(t, err, eventdomain.ErrInvalidName)

		_, err = f.svc.Create(f.ctx(), eventdomain.CreateRequest{Name: "Backwards", Open: close, Close: open})
		assert.ErrorIs(t, err, eventdomain.ErrInvalidWindow)

		_, err = f.svc.Create(f.ctx(), eventdomain.CreateRequest{Name: "Odd", Open: open, Close: close, EventType: "relay"})
		assert.ErrorIs(t, err, eventdomain.ErrInvalidEventType)

		bad := -2
		_, err = f.svc.Create(f.ctx(), eventdomain.CreateRequest{Name: "Capped", Open: open, Close: close, OpenCap: &bad})
		assert.ErrorIs(t, err, eventdomain.ErrInvalidCap)

		_, err = f.svc.Create(context.Background(), eventdomain.CreateRequest{Name: "No affiliate", Open: open, Close: close})
		assert.ErrorIs(t, err, eventdomain.ErrInvalidAffiliate)
	})
}

func TestListEventsPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{
			Name:  fmt.Sprintf("Series Race %d", i),
			Open:  f.clk.Now(),
			Close: f.clk.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)
	}

	page, err := f.svc.List(f.ctx(), pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.True(t, page.PageInfo.HasMore)
	assert.Equal(t, "Series Race 0", page.Events[0].Name)

	seen := []string{page.Events[0].Name, page.Events[1].Name}
	token := page.PageInfo.NextPageToken
	for token != "" && page.PageInfo.HasMore {
		page, err = f.svc.List(f.ctx(), pagination.Pagination{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		for _, e := range page.Events {
			seen = append(seen, e.Name)
		}
		token = page.PageInfo.NextPageToken
	}
	assert.Len(t, seen, 5)

	_, err = f.svc.List(f.ctx(), pagination.Pagination{PageToken: "!!not-a-token!!"})
	assert.ErrorIs(t, err, eventdomain.ErrInvalidPageToken)

	_, err = f.svc.List(context.Background(), pagination.Pagination{})
	assert.ErrorIs(t, err, eventdomain.ErrInvalidAffiliate)
}

func TestEvaluateCapacity(t *testing.T) {
	f := newFixture(t)
	cap := 2
	event, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{
		Name:    "Capped Crit",
		Open:    f.clk.Now(),
		Close:   f.clk.Now().Add(24 * time.Hour),
		OpenCap: &cap,
	})
	require.NoError(t, err)

	seedReg := func(designation string, status regdomain.Status) *regdomain.Registration {
		person := &persondomain.Person{ID: f.node.Generate(), Name: "Rider", RosterDesignation: designation, CreatedAt: f.clk.Now()}
		require.NoError(t, f.db.Create(person).Error)
		reg := &regdomain.Registration{
			ID: f.node.Generate(), EventID: event.ID, PersonID: person.ID, PriceID: f.node.Generate(),
			Status: status, CreatedAt: f.clk.Now(), ModifiedAt: f.clk.Now(),
		}
		require.NoError(t, f.db.Create(reg).Error)
		return reg
	}

	confirmed := seedReg("open", regdomain.StatusConfirmed)
	seedReg("open", regdomain.StatusPartiallyPaid)
	seedReg("open", regdomain.StatusPending)
	seedReg("open", regdomain.StatusWaiting)
	seedReg("women", regdomain.StatusConfirmed)

	occ, err := f.svc.EvaluateCapacity(f.ctx(), event.ID, eventdomain.CategoryOpen, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, occ.Count)
	assert.False(t, occ.HasRoom())

	// excluding a registration frees its slot for the recheck
	occ, err = f.svc.EvaluateCapacity(f.ctx(), event.ID, eventdomain.CategoryOpen, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, occ.Count)
	assert.True(t, occ.HasRoom())

	// the women cap was never set, so counting is bypassed
	occ, err = f.svc.EvaluateCapacity(f.ctx(), event.ID, eventdomain.CategoryWomen, 0)
	require.NoError(t, err)
	assert.True(t, occ.Unlimited())
	assert.True(t, occ.HasRoom())

	_, err = f.svc.EvaluateCapacity(f.ctx(), event.ID, "junior", 0)
	assert.ErrorIs(t, err, eventdomain.ErrInvalidCategory)

	_, err = f.svc.EvaluateCapacity(f.ctx(), f.node.Generate(), eventdomain.CategoryOpen, 0)
	assert.ErrorIs(t, err, eventdomain.ErrNotFound)
}

func TestEvaluateCapacityTxSeesUncommittedAdmissions(t *testing.T) {
	f := newFixture(t)
	cap := 1
	event, err := f.svc.Create(f.ctx(), eventdomain.CreateRequest{
		Name:    "Single Slot Sprint",
		Open:    f.clk.Now(),
		Close:   f.clk.Now().Add(24 * time.Hour),
		OpenCap: &cap,
	})
	require.NoError(t, err)

	person := &persondomain.Person{ID: f.node.Generate(), Name: "Rider", RosterDesignation: "open", CreatedAt: f.clk.Now()}
	require.NoError(t, f.db.Create(person).Error)

	// an admission written earlier in the same transaction must count
	// against the cap before the transaction commits
	err = f.db.Transaction(func(tx *gorm.DB) error {
		occ, err := f.svc.EvaluateCapacityTx(f.ctx(), tx, event.ID, eventdomain.CategoryOpen, 0)
		require.NoError(t, err)
		require.True(t, occ.HasRoom())

		reg := &regdomain.Registration{
			ID: f.node.Generate(), EventID: event.ID, PersonID: person.ID, PriceID: f.node.Generate(),
			Status: regdomain.StatusConfirmed, CreatedAt: f.clk.Now(), ModifiedAt: f.clk.Now(),
		}
		require.NoError(t, tx.Create(reg).Error)

		occ, err = f.svc.EvaluateCapacityTx(f.ctx(), tx, event.ID, eventdomain.CategoryOpen, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, occ.Count)
		assert.False(t, occ.HasRoom())
		return nil
	})
	require.NoError(t, err)
}
