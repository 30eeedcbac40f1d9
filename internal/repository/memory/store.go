// Package memory 内存版仓储，用于测试和本地调试，行为与 gorm 实现保持一致
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"reservationapi/internal/model"
	"reservationapi/internal/repository"
)

var (
	_ repository.ReservationRepository   = (*Store)(nil)
	_ repository.ContactMethodRepository = (*ContactMethods)(nil)
)

// Store 预约表，联系方式从 ContactMethods 中解析
type Store struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]model.Reservation
	methods *ContactMethods

	// Err 非 nil 时所有操作直接返回该错误
	Err error
}

func NewStore(methods *ContactMethods) *Store {
	return &Store{
		nextID:  1,
		rows:    make(map[int64]model.Reservation),
		methods: methods,
	}
}

func (s *Store) FindAll(ctx context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]model.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*model.Reservation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}

	r, ok := s.rows[id]
	if !ok {
		return nil, false, nil
	}
	c := clone(r)
	return &c, true, nil
}

func (s *Store) Save(ctx context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	now := time.Now()
	if r.ID == 0 {
		r.ID = s.nextID
		s.nextID++
		r.CreatedAt = now
	} else if r.ID >= s.nextID {
		s.nextID = r.ID + 1
	}
	r.UpdatedAt = now

	// 和关联表一样只保留已登记的联系方式
	kept := make([]model.ContactMethod, 0, len(r.ContactMethods))
	for _, m := range r.ContactMethods {
		if known, ok := s.methods.byName(m.Name); ok {
			kept = append(kept, known)
		}
	}
	r.ContactMethods = kept

	s.rows[r.ID] = clone(*r)
	return nil
}

func (s *Store) Delete(ctx context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.rows, r.ID)
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.rows)), nil
}

func clone(r model.Reservation) model.Reservation {
	methods := make([]model.ContactMethod, len(r.ContactMethods))
	copy(methods, r.ContactMethods)
	r.ContactMethods = methods
	return r
}

// ContactMethods 联系方式表，名称唯一
type ContactMethods struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.ContactMethod
}

func NewContactMethods(names ...string) *ContactMethods {
	c := &ContactMethods{nextID: 1}
	for _, name := range names {
		c.insert(name)
	}
	return c
}

func (c *ContactMethods) insert(name string) model.ContactMethod {
	for _, m := range c.rows {
		if m.Name == name {
			return m
		}
	}
	m := model.ContactMethod{Name: name}
	m.ID = c.nextID
	c.nextID++
	c.rows = append(c.rows, m)
	return m
}

func (c *ContactMethods) byName(name string) (model.ContactMethod, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.rows {
		if m.Name == name {
			return m, true
		}
	}
	return model.ContactMethod{}, false
}

func (c *ContactMethods) FindAllByNameIn(ctx context.Context, names []string) ([]model.ContactMethod, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]model.ContactMethod, 0, len(names))
	for _, m := range c.rows {
		if _, ok := want[m.Name]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *ContactMethods) SaveAll(ctx context.Context, methods []model.ContactMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range methods {
		methods[i] = c.insert(methods[i].Name)
	}
	return nil
}

func (c *ContactMethods) Count(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.rows)), nil
}
