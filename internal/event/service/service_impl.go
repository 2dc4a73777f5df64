package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	"github.com/smallbiznis/rosterly/internal/clock"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"github.com/smallbiznis/rosterly/pkg/db"
	"github.com/smallbiznis/rosterly/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  eventdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  eventdomain.Repository
}

func New(p Params) eventdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req eventdomain.CreateRequest) (*eventdomain.Event, error) {
	affiliateID, ok := affiliatectx.AffiliateIDFromContext(ctx)
	if !ok || affiliateID == 0 {
		return nil, eventdomain.ErrInvalidAffiliate
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, eventdomain.ErrInvalidName
	}
	if !req.Close.After(req.Open) {
		return nil, eventdomain.ErrInvalidWindow
	}

	eventType, err := parseEventType(req.EventType)
	if err != nil {
		return nil, err
	}

	openCap := eventdomain.CapUnlimited
	if req.OpenCap != nil {
		openCap = *req.OpenCap
	}
	womenCap := eventdomain.CapUnlimited
	if req.WomenCap != nil {
		womenCap = *req.WomenCap
	}
	if openCap < eventdomain.CapUnlimited || womenCap < eventdomain.CapUnlimited {
		return nil, eventdomain.ErrInvalidCap
	}

	entity := &eventdomain.Event{
		ID:            s.genID.Generate(),
		AffiliateID:   affiliateID,
		EventType:     eventType,
		Name:          name,
		Slug:          slug.Make(name),
		Open:          req.Open.UTC(),
		Close:         req.Close.UTC(),
		OpenCap:       openCap,
		WomenCap:      womenCap,
		QuestionCount: req.QuestionCount,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, eventdomain.ErrDuplicateEventSlug
		}
		return nil, err
	}

	return entity, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*eventdomain.Event, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, eventdomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) (*eventdomain.EventPage, error) {
	affiliateID, ok := affiliatectx.AffiliateIDFromContext(ctx)
	if !ok || affiliateID == 0 {
		return nil, eventdomain.ErrInvalidAffiliate
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 25
	}
	var afterID snowflake.ID
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, eventdomain.ErrInvalidPageToken
		}
		afterID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, eventdomain.ErrInvalidPageToken
		}
	}

	// overfetch by one to learn whether more rows remain
	items, err := s.repo.List(ctx, s.db, affiliateID, afterID, limit+1)
	if err != nil {
		return nil, err
	}

	refs := make([]*eventdomain.Event, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	pageInfo, refs := pagination.BuildCursorPageInfo(refs, limit, func(e *eventdomain.Event) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: e.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	events := make([]eventdomain.Event, len(refs))
	for i := range refs {
		events[i] = *refs[i]
	}
	return &eventdomain.EventPage{Events: events, PageInfo: pageInfo}, nil
}

func (s *Service) EvaluateCapacity(ctx context.Context, eventID snowflake.ID, category eventdomain.RosterCategory, excluding snowflake.ID) (eventdomain.Occupancy, error) {
	return s.EvaluateCapacityTx(ctx, s.db, eventID, category, excluding)
}

func (s *Service) EvaluateCapacityTx(ctx context.Context, tx *gorm.DB, eventID snowflake.ID, category eventdomain.RosterCategory, excluding snowflake.ID) (eventdomain.Occupancy, error) {
	category, err := parseCategory(category)
	if err != nil {
		return eventdomain.Occupancy{}, err
	}

	// the event row lock serializes concurrent admissions; without it two
	// writers can both count a free slot before either commit is visible
	entity, err := s.repo.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return eventdomain.Occupancy{}, err
	}
	if entity == nil {
		return eventdomain.Occupancy{}, eventdomain.ErrNotFound
	}

	occ := eventdomain.Occupancy{
		Category: category,
		Cap:      entity.CapFor(category),
	}
	if occ.Unlimited() {
		return occ, nil
	}

	count, err := s.repo.CountActive(ctx, tx, eventID, category, excluding)
	if err != nil {
		return eventdomain.Occupancy{}, err
	}
	occ.Count = count
	return occ, nil
}

func parseEventType(value eventdomain.EventType) (eventdomain.EventType, error) {
	switch eventdomain.EventType(strings.ToLower(strings.TrimSpace(string(value)))) {
	case eventdomain.TypeIndividual, "":
		return eventdomain.TypeIndividual, nil
	case eventdomain.TypeTeam:
		return eventdomain.TypeTeam, nil
	default:
		return "", eventdomain.ErrInvalidEventType
	}
}

func parseCategory(value eventdomain.RosterCategory) (eventdomain.RosterCategory, error) {
	switch eventdomain.RosterCategory(strings.ToLower(strings.TrimSpace(string(value)))) {
	case eventdomain.CategoryOpen, "":
		return eventdomain.CategoryOpen, nil
	case eventdomain.CategoryWomen:
		return eventdomain.CategoryWomen, nil
	default:
		return "", eventdomain.ErrInvalidCategory
	}
}
