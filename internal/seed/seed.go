package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/internal/repository"
	"reservationapi/pkg/logger"
)

type sampleReservation struct {
	name    string
	phone   string
	email   string
	date    model.Date
	time    model.TimeOfDay
	guests  int
	contact string
}

var sampleReservations = []sampleReservation{
	{"Zhack Ariya", "+639234567890", "zhackariya@test.com", model.NewDate(2024, time.May, 15), model.NewTimeOfDay(18, 30, 0), 2, model.ContactMethodEmail},
	{"Aladdin Alawi", "+639187654321", "a.alawi@test.com", model.NewDate(2024, time.May, 16), model.NewTimeOfDay(19, 0, 0), 4, model.ContactMethodSMS},
	{"Zhack Alawi", "+9122334455", "zhack.alawi@test.com", model.NewDate(2024, time.May, 17), model.NewTimeOfDay(20, 0, 0), 6, model.ContactMethodPhone},
}

// Seeder 启动时写入示例数据
type Seeder struct {
	reservations   repository.ReservationRepository
	contactMethods repository.ContactMethodRepository
}

func NewSeeder(reservations repository.ReservationRepository, contactMethods repository.ContactMethodRepository) *Seeder {
	return &Seeder{reservations: reservations, contactMethods: contactMethods}
}

// Run 两张表都为空时才写入，返回是否写入了数据
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	methodCount, err := s.contactMethods.Count(ctx)
	if err != nil {
		return false, err
	}
	reservationCount, err := s.reservations.Count(ctx)
	if err != nil {
		return false, err
	}
	if methodCount > 0 || reservationCount > 0 {
		logger.Logger.Info("Store is not empty, skipping seed",
			zap.Int64("contact_methods", methodCount),
			zap.Int64("reservations", reservationCount),
		)
		return false, nil
	}

	methods := []model.ContactMethod{
		{Name: model.ContactMethodEmail},
		{Name: model.ContactMethodSMS},
		{Name: model.ContactMethodPhone},
	}
	if err := s.contactMethods.SaveAll(ctx, methods); err != nil {
		return false, err
	}

	byName := make(map[string]model.ContactMethod, len(methods))
	for _, m := range methods {
		byName[m.Name] = m
	}

	for _, sample := range sampleReservations {
		method, ok := byName[sample.contact]
		if !ok {
			return false, fmt.Errorf("seed contact method %q missing", sample.contact)
		}

		r := &model.Reservation{
			Name:            sample.name,
			PhoneNumber:     sample.phone,
			Email:           sample.email,
			ReservationDate: sample.date,
			ReservationTime: sample.time,
			NumberOfGuests:  sample.guests,
			ContactMethods:  []model.ContactMethod{method},
		}
		if err := s.reservations.Save(ctx, r); err != nil {
			return false, err
		}
	}

	logger.Logger.Info("Seeded sample data",
		zap.Int("contact_methods", len(methods)),
		zap.Int("reservations", len(sampleReservations)),
	)
	return true, nil
}
