package model

import "context"

type reservationIDKey struct{}

// WithReservationID 在投递链路上携带预约 id
func WithReservationID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, reservationIDKey{}, id)
}

func ReservationIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(reservationIDKey{}).(int64)
	return id
}
