package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	"github.com/smallbiznis/rosterly/pkg/db/pagination"
)

type createEventRequest struct {
	EventType     string    `json:"event_type"`
	Name          string    `json:"name"`
	Open          time.Time `json:"open"`
	Close         time.Time `json:"close"`
	OpenCap       *int      `json:"open_cap"`
	WomenCap      *int      `json:"women_cap"`
	QuestionCount int       `json:"question_count"`
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateRequest{
		EventType:     eventdomain.EventType(strings.TrimSpace(req.EventType)),
		Name:          req.Name,
		Open:          req.Open,
		Close:         req.Close,
		OpenCap:       req.OpenCap,
		WomenCap:      req.WomenCap,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEvents(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.List(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Events, "page_info": resp.PageInfo})
}

func (s *Server) GetEventByID(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.eventSvc.Get(c.Request.Context(), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEventPrices(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var (
		prices []pricedomain.Price
	)
	if c.Query("open") == "true" {
		prices, err = s.priceSvc.CurrentForEvent(c.Request.Context(), eventID)
	} else {
		prices, err = s.priceSvc.ForEvent(c.Request.Context(), eventID)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prices})
}

type createPriceRequest struct {
	Name                string    `json:"name"`
	Open                time.Time `json:"open"`
	Close               time.Time `json:"close"`
	Total               int64     `json:"total"`
	MinimumDeposit      int64     `json:"minimum_deposit"`
	AllowDeposit        bool      `json:"allow_deposit"`
	DepositOnly         bool      `json:"deposit_only"`
	OnlinePaymentOption string    `json:"online_payment_option"`
	AllowLatePayment    bool      `json:"allow_late_payment"`
}

func (s *Server) CreateEventPrice(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceSvc.Create(c.Request.Context(), eventID, pricedomain.CreateRequest{
		Name:                req.Name,
		Open:                req.Open,
		Close:               req.Close,
		Total:               req.Total,
		MinimumDeposit:      req.MinimumDeposit,
		AllowDeposit:        req.AllowDeposit,
		DepositOnly:         req.DepositOnly,
		OnlinePaymentOption: pricedomain.OnlinePaymentOption(strings.TrimSpace(req.OnlinePaymentOption)),
		AllowLatePayment:    req.AllowLatePayment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWaiting(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.registrationSvc.Waiting(c.Request.Context(), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, newValidationError(name, "invalid_"+name, "missing identifier")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(name, "invalid_"+name, "invalid identifier")
	}
	return id, nil
}
