package affiliatectx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// AffiliateContextKey is the request context key for the active affiliate ID.
type AffiliateContextKey struct{}

// WithAffiliateID stores the affiliate ID in the context.
func WithAffiliateID(ctx context.Context, affiliateID snowflake.ID) context.Context {
	return context.WithValue(ctx, AffiliateContextKey{}, affiliateID)
}

// AffiliateIDFromContext returns the affiliate ID from context, if set.
func AffiliateIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(AffiliateContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
