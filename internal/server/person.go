package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
)

type createPersonRequest struct {
	Name              string `json:"name"`
	RosterDesignation string `json:"roster_designation"`
}

func (s *Server) CreatePerson(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}
	designation := strings.ToLower(strings.TrimSpace(req.RosterDesignation))
	if designation == "" {
		designation = "open"
	}
	switch designation {
	case "open", "women":
	default:
		AbortWithError(c, newValidationError("roster_designation", "invalid_roster_designation", "invalid value"))
		return
	}

	person := &persondomain.Person{
		ID:                s.genID.Generate(),
		Name:              name,
		RosterDesignation: designation,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.personRepo.Insert(c.Request.Context(), s.db, person); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": person})
}

func (s *Server) GetPersonByID(c *gin.Context) {
	personID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	person, err := s.personRepo.FindByID(c.Request.Context(), s.db, personID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if person == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": person})
}

func (s *Server) ListPersonCredits(c *gin.Context) {
	personID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	affiliateID, ok := affiliatectx.AffiliateIDFromContext(c.Request.Context())
	if !ok || affiliateID == 0 {
		AbortWithError(c, ErrForbidden)
		return
	}

	credits, err := s.creditRepo.ListUnused(c.Request.Context(), s.db, affiliateID, personID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": credits})
}
