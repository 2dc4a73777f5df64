package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rosterly/internal/affiliatectx"
)

const HeaderAffiliate = "X-Affiliate-ID"

// AffiliateContext resolves the tenant for the request: the
// X-Affiliate-ID header when present, otherwise the configured default.
// Unknown or inactive affiliates are rejected before any handler runs.
func (s *Server) AffiliateContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		var affiliateID snowflake.ID

		if raw := strings.TrimSpace(c.GetHeader(HeaderAffiliate)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("affiliate_id", "invalid_affiliate", "invalid affiliate id"))
				return
			}
			affiliateID = parsed
		} else if s.cfg.DefaultAffiliateID != 0 {
			affiliateID = snowflake.ID(s.cfg.DefaultAffiliateID)
		}

		if affiliateID != 0 {
			affiliate, err := s.affiliateRepo.FindByID(c.Request.Context(), s.db, affiliateID)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			if affiliate == nil || !affiliate.Active {
				AbortWithError(c, ErrForbidden)
				return
			}
			c.Request = c.Request.WithContext(
				affiliatectx.WithAffiliateID(c.Request.Context(), affiliate.ID),
			)
		}

		c.Next()
	}
}
