package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
)

type createRegistrationRequest struct {
	EventID  string `json:"event_id"`
	PersonID string `json:"person_id"`
	PriceID  string `json:"price_id"`
}

func (s *Server) CreateRegistration(c *gin.Context) {
	var req createRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventID, err := parseID(req.EventID, "event_id", true)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	personID, err := parseID(req.PersonID, "person_id", true)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	priceID, err := parseID(req.PriceID, "price_id", false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.registrationSvc.Register(c.Request.Context(), regdomain.RegisterRequest{
		EventID:  eventID,
		PersonID: personID,
		PriceID:  priceID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRegistrationByID(c *gin.Context) {
	registrationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.registrationSvc.Get(c.Request.Context(), registrationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRegistration(c *gin.Context) {
	registrationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.registrationSvc.Unregister(c.Request.Context(), registrationID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListRegistrationPayments(c *gin.Context) {
	registrationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentSvc.ListForRegistration(c.Request.Context(), registrationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Checkout(c *gin.Context) {
	personID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.registrationSvc.Checkout(c.Request.Context(), personID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UnpaidReport(c *gin.Context) {
	resp, err := s.registrationSvc.Unpaid(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
