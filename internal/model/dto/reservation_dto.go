package dto

import "reservationapi/internal/model"

// ReservationDto 对外的预约结构，联系方式用名称表示
type ReservationDto struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	PhoneNumber     string          `json:"phone_number"`
	Email           string          `json:"email"`
	ReservationDate model.Date      `json:"reservation_date"`
	ReservationTime model.TimeOfDay `json:"reservation_time"`
	NumberOfGuests  int             `json:"number_of_guests"`
	ContactMethods  []string        `json:"contact_methods"`
}
