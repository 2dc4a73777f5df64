package repository

import (
	"context"

	affiliatedomain "github.com/smallbiznis/rosterly/internal/affiliate/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() affiliatedomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*affiliatedomain.Affiliate, error) {
	var affiliate affiliatedomain.Affiliate
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, active, created_at FROM affiliates WHERE id = ?`,
		id,
	).Scan(&affiliate).Error
	if err != nil {
		return nil, err
	}
	if affiliate.ID == 0 {
		return nil, nil
	}
	return &affiliate, nil
}
