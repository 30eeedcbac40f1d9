package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reservationapi/internal/model"
)

// ReservationRepository 预约持久化接口，找不到记录时返回 found=false 而不是错误
type ReservationRepository interface {
	FindAll(ctx context.Context) ([]model.Reservation, error)
	FindByID(ctx context.Context, id int64) (*model.Reservation, bool, error)
	// Save id 为 0 时插入，否则按 id 更新，并整体替换联系方式
	Save(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, r *model.Reservation) error
	Count(ctx context.Context) (int64, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("ContactMethods").
		Order("id").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*model.Reservation, bool, error) {
	var reservation model.Reservation
	err := r.db.WithContext(ctx).
		Preload("ContactMethods").
		Where("id = ?", id).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find reservation %d: %w", id, err)
	}
	return &reservation, true, nil
}

func (r *reservationRepository) Save(ctx context.Context, reservation *model.Reservation) error {
	methods := reservation.ContactMethods

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(reservation).Error; err != nil {
			return err
		}

		assoc := tx.Model(reservation).Association("ContactMethods")
		if len(methods) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(methods)
	})
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}

	reservation.ContactMethods = methods
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, reservation *model.Reservation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 只删关联行，contact_methods 本身保留
		if err := tx.Model(reservation).Association("ContactMethods").Clear(); err != nil {
			return err
		}
		return tx.Delete(&model.Reservation{}, reservation.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete reservation %d: %w", reservation.ID, err)
	}
	return nil
}

func (r *reservationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Reservation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return n, nil
}
