package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/internal/model/dto"
	"reservationapi/internal/repository"
	pkgerrors "reservationapi/pkg/errors"
	"reservationapi/pkg/logger"
)

// ReservationService 预约 CRUD 编排。找不到记录用 found=false 表示，不返回错误
type ReservationService struct {
	reservations   repository.ReservationRepository
	contactMethods repository.ContactMethodRepository
}

func NewReservationService(
	reservations repository.ReservationRepository,
	contactMethods repository.ContactMethodRepository,
) *ReservationService {
	return &ReservationService{
		reservations:   reservations,
		contactMethods: contactMethods,
	}
}

func (s *ReservationService) GetAllReservations(ctx context.Context) ([]dto.ReservationDto, error) {
	reservations, err := s.reservations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReservationDto, 0, len(reservations))
	for i := range reservations {
		out = append(out, ConvertToDto(&reservations[i]))
	}
	return out, nil
}

func (s *ReservationService) GetReservationByID(ctx context.Context, id int64) (*dto.ReservationDto, bool, error) {
	reservation, found, err := s.reservations.FindByID(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}

	out := ConvertToDto(reservation)
	return &out, true, nil
}

// CreateReservation 未知的联系方式名称直接丢弃，返回带新 id 的结果
func (s *ReservationService) CreateReservation(ctx context.Context, req dto.ReservationDto) (*dto.ReservationDto, error) {
	if err := validateReservation(req); err != nil {
		return nil, err
	}

	reservation := ConvertToEntity(req)
	reservation.ID = 0

	methods, err := s.resolveContactMethods(ctx, req.ContactMethods)
	if err != nil {
		return nil, err
	}
	reservation.ContactMethods = methods

	if err := s.reservations.Save(ctx, reservation); err != nil {
		return nil, err
	}

	logger.Logger.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int("contact_methods", len(methods)),
	)

	out := ConvertToDto(reservation)
	return &out, nil
}

// UpdateReservation 整体替换所有可变字段，不做字段级合并
func (s *ReservationService) UpdateReservation(ctx context.Context, id int64, req dto.ReservationDto) (*dto.ReservationDto, bool, error) {
	if err := validateReservation(req); err != nil {
		return nil, false, err
	}

	existing, found, err := s.reservations.FindByID(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}

	existing.Name = req.Name
	existing.PhoneNumber = req.PhoneNumber
	existing.Email = req.Email
	existing.ReservationDate = req.ReservationDate
	existing.ReservationTime = req.ReservationTime
	existing.NumberOfGuests = req.NumberOfGuests

	methods, err := s.resolveContactMethods(ctx, req.ContactMethods)
	if err != nil {
		return nil, false, err
	}
	existing.ContactMethods = methods

	if err := s.reservations.Save(ctx, existing); err != nil {
		return nil, false, err
	}

	logger.Logger.Info("Reservation updated", zap.Int64("reservation_id", id))

	out := ConvertToDto(existing)
	return &out, true, nil
}

// DeleteReservation 记录不存在时返回 false
func (s *ReservationService) DeleteReservation(ctx context.Context, id int64) (bool, error) {
	existing, found, err := s.reservations.FindByID(ctx, id)
	if err != nil || !found {
		return false, err
	}

	if err := s.reservations.Delete(ctx, existing); err != nil {
		return false, err
	}

	logger.Logger.Info("Reservation deleted", zap.Int64("reservation_id", id))
	return true, nil
}

func (s *ReservationService) resolveContactMethods(ctx context.Context, names []string) ([]model.ContactMethod, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return []model.ContactMethod{}, nil
	}

	methods, err := s.contactMethods.FindAllByNameIn(ctx, names)
	if err != nil {
		return nil, err
	}

	if dropped := len(names) - len(methods); dropped > 0 {
		logger.Logger.Debug("Dropped unknown contact methods",
			zap.Strings("requested", names),
			zap.Int("dropped", dropped),
		)
	}
	return methods, nil
}

// ConvertToDto 联系方式名称去重并排序，空集合输出 []
func ConvertToDto(r *model.Reservation) dto.ReservationDto {
	return dto.ReservationDto{
		ID:              r.ID,
		Name:            r.Name,
		PhoneNumber:     r.PhoneNumber,
		Email:           r.Email,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		NumberOfGuests:  r.NumberOfGuests,
		ContactMethods:  r.ContactMethodNames(),
	}
}

// ConvertToEntity 只做结构转换，联系方式只带名称，不查库
func ConvertToEntity(d dto.ReservationDto) *model.Reservation {
	names := uniqueNames(d.ContactMethods)
	methods := make([]model.ContactMethod, 0, len(names))
	for _, name := range names {
		methods = append(methods, model.ContactMethod{Name: name})
	}

	r := &model.Reservation{
		Name:            d.Name,
		PhoneNumber:     d.PhoneNumber,
		Email:           d.Email,
		ReservationDate: d.ReservationDate,
		ReservationTime: d.ReservationTime,
		NumberOfGuests:  d.NumberOfGuests,
		ContactMethods:  methods,
	}
	r.ID = d.ID
	return r
}

func validateReservation(d dto.ReservationDto) error {
	if d.NumberOfGuests < 0 {
		return pkgerrors.InvalidRequest.WithMessage(
			fmt.Sprintf("number_of_guests must not be negative, got %d", d.NumberOfGuests))
	}
	return nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
