package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() persondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *persondomain.Person) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO people (id, name, roster_designation, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.ID,
		p.Name,
		p.RosterDesignation,
		p.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*persondomain.Person, error) {
	var p persondomain.Person
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, roster_designation, created_at
		 FROM people WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}
