package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reservationapi/internal/model"
)

// ContactMethodRepository 联系方式只读查询 + 种子写入
type ContactMethodRepository interface {
	FindAllByNameIn(ctx context.Context, names []string) ([]model.ContactMethod, error)
	SaveAll(ctx context.Context, methods []model.ContactMethod) error
	Count(ctx context.Context) (int64, error)
}

type contactMethodRepository struct {
	db *gorm.DB
}

func NewContactMethodRepository(db *gorm.DB) ContactMethodRepository {
	return &contactMethodRepository{db: db}
}

func (r *contactMethodRepository) FindAllByNameIn(ctx context.Context, names []string) ([]model.ContactMethod, error) {
	if len(names) == 0 {
		return []model.ContactMethod{}, nil
	}

	var methods []model.ContactMethod
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to find contact methods: %w", err)
	}
	return methods, nil
}

// SaveAll 按名称去重写入，已存在的名称会回填 id
func (r *contactMethodRepository) SaveAll(ctx context.Context, methods []model.ContactMethod) error {
	if len(methods) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).
		Create(&methods).Error
	if err != nil {
		return fmt.Errorf("failed to save contact methods: %w", err)
	}
	return nil
}

func (r *contactMethodRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ContactMethod{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count contact methods: %w", err)
	}
	return n, nil
}
