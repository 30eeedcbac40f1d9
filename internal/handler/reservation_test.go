package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"

	"reservationapi/internal/handler"
	"reservationapi/internal/model"
	"reservationapi/internal/model/dto"
	"reservationapi/internal/repository/memory"
	"reservationapi/internal/router"
	"reservationapi/internal/service"
	"reservationapi/pkg/response"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	panics   bool
}

func (n *recordingNotifier) SendNotification(ctx context.Context, r *model.Reservation, message string) {
	if n.panics {
		panic("notifier exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type testServer struct {
	h        *server.Hertz
	store    *memory.Store
	notifier *recordingNotifier
}

func newTestServer(checks map[string]handler.HealthCheck) *testServer {
	methods := memory.NewContactMethods(model.ContactMethodEmail, model.ContactMethodSMS, model.ContactMethodPhone)
	store := memory.NewStore(methods)
	notifier := &recordingNotifier{}

	h := server.Default()
	router.Register(h, router.Dependencies{
		Reservations: handler.NewReservationHandler(service.NewReservationService(store, methods), notifier),
		Health:       handler.NewHealthHandler(checks),
	})
	return &testServer{h: h, store: store, notifier: notifier}
}

func (s *testServer) do(method, url, body string) *ut.ResponseRecorder {
	if body == "" {
		return ut.PerformRequest(s.h.Engine, method, url, nil)
	}
	return ut.PerformRequest(s.h.Engine, method, url,
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

const createBody = `{"name":"Test","phone_number":"+1555","email":"t@test.com","reservation_date":"2025-01-01","reservation_time":"10:00","number_of_guests":2,"contact_methods":["Email"]}`

func decodeReservation(t *testing.T, body []byte) dto.ReservationDto {
	t.Helper()
	var out dto.ReservationDto
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode reservation %s: %v", body, err)
	}
	return out
}

func decodeError(t *testing.T, body []byte) response.ErrorResponse {
	t.Helper()
	var out response.ErrorResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode error %s: %v", body, err)
	}
	return out
}

func TestReservationLifecycle(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodPost, "/reservations", createBody)
	resp := w.Result()
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
	created := decodeReservation(t, resp.Body())
	if created.ID == 0 || created.Name != "Test" || created.ReservationTime.String() != "10:00" {
		t.Fatalf("unexpected created reservation %+v", created)
	}
	if len(created.ContactMethods) != 1 || created.ContactMethods[0] != "Email" {
		t.Errorf("contact methods = %v", created.ContactMethods)
	}

	msgs := s.notifier.Messages()
	if len(msgs) != 1 || !strings.HasPrefix(msgs[0], "Reservation confirmed for Test") {
		t.Errorf("notifications = %v", msgs)
	}

	url := "/reservations/" + itoa(created.ID)
	resp = s.do(http.MethodGet, url, "").Result()
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode())
	}
	if got := decodeReservation(t, resp.Body()); got.ID != created.ID || got.Email != "t@test.com" {
		t.Errorf("unexpected fetched reservation %+v", got)
	}

	resp = s.do(http.MethodGet, "/reservations", "").Result()
	var list []dto.ReservationDto
	if err := json.Unmarshal(resp.Body(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s, err = %v", resp.Body(), err)
	}

	resp = s.do(http.MethodDelete, url, "").Result()
	if resp.StatusCode() != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode())
	}
	if len(resp.Body()) != 0 {
		t.Errorf("delete body should be empty, got %s", resp.Body())
	}

	resp = s.do(http.MethodGet, url, "").Result()
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", resp.StatusCode())
	}
	if e := decodeError(t, resp.Body()); e.Error.Code != "RESERVATION_NOT_FOUND" {
		t.Errorf("error code = %s", e.Error.Code)
	}

	resp = s.do(http.MethodDelete, url, "").Result()
	if resp.StatusCode() != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode())
	}
}

func TestListEmpty(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodGet, "/reservations", "").Result()
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if body := strings.TrimSpace(string(resp.Body())); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestCreateWithUnknownContactMethod(t *testing.T) {
	s := newTestServer(nil)

	body := `{"name":"Pigeon","reservation_date":"2025-01-01","reservation_time":"10:00","number_of_guests":1,"contact_methods":["Carrier Pigeon"]}`
	resp := s.do(http.MethodPost, "/reservations", body).Result()
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
	if !bytes.Contains(resp.Body(), []byte(`"contact_methods":[]`)) {
		t.Errorf("expected empty contact_methods array, body = %s", resp.Body())
	}
}

func TestCreateWithoutDateAndTime(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodPost, "/reservations", `{"name":"Walk-in","number_of_guests":1}`).Result()
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
	body := string(resp.Body())
	if !strings.Contains(body, `"reservation_date":null`) || !strings.Contains(body, `"reservation_time":null`) {
		t.Errorf("absent date and time should echo as null, body = %s", body)
	}
}

func TestUpdateReservation(t *testing.T) {
	s := newTestServer(nil)

	created := decodeReservation(t, s.do(http.MethodPost, "/reservations", createBody).Result().Body())
	url := "/reservations/" + itoa(created.ID)

	body := `{"name":"Updated","reservation_date":"2025-02-02","reservation_time":"19:30:00","number_of_guests":4,"contact_methods":["SMS"]}`
	resp := s.do(http.MethodPut, url, body).Result()
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
	updated := decodeReservation(t, resp.Body())
	if updated.ID != created.ID || updated.Name != "Updated" || updated.Email != "" {
		t.Errorf("unexpected updated reservation %+v", updated)
	}
	if len(updated.ContactMethods) != 1 || updated.ContactMethods[0] != "SMS" {
		t.Errorf("contact methods = %v", updated.ContactMethods)
	}

	msgs := s.notifier.Messages()
	if len(msgs) != 2 || !strings.HasPrefix(msgs[1], service.UpdatedMessagePrefix) {
		t.Errorf("notifications = %v", msgs)
	}
}

func TestUpdateMissingReservation(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodPut, "/reservations/999", createBody).Result()
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if n, _ := s.store.Count(context.Background()); n != 0 {
		t.Errorf("update of missing id must not create, count = %d", n)
	}
	if len(s.notifier.Messages()) != 0 {
		t.Error("no notification expected")
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name     string
		method   string
		url      string
		body     string
		wantCode string
	}{
		{name: "malformed json", method: http.MethodPost, url: "/reservations", body: `{"name":`, wantCode: "INVALID_REQUEST"},
		{name: "bad date", method: http.MethodPost, url: "/reservations", body: `{"name":"x","reservation_date":"01/01/2025"}`, wantCode: "INVALID_REQUEST"},
		{name: "empty body", method: http.MethodPost, url: "/reservations", wantCode: "INVALID_REQUEST"},
		{name: "negative guests", method: http.MethodPost, url: "/reservations", body: `{"name":"x","number_of_guests":-3}`, wantCode: "INVALID_REQUEST"},
		{name: "non numeric id", method: http.MethodGet, url: "/reservations/abc", wantCode: "INVALID_PATH"},
		{name: "non numeric id on delete", method: http.MethodDelete, url: "/reservations/abc", wantCode: "INVALID_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(tt.method, tt.url, tt.body).Result()
			if resp.StatusCode() != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
			}
			if e := decodeError(t, resp.Body()); e.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", e.Error.Code, tt.wantCode)
			}
		})
	}

	if n, _ := s.store.Count(context.Background()); n != 0 {
		t.Errorf("bad requests must not store anything, count = %d", n)
	}
}

func TestStorageFault(t *testing.T) {
	s := newTestServer(nil)
	s.store.Err = errors.New("connection refused")

	resp := s.do(http.MethodGet, "/reservations", "").Result()
	if resp.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	e := decodeError(t, resp.Body())
	if e.Error.Code != "STORAGE_FAULT" {
		t.Errorf("code = %s", e.Error.Code)
	}
	if strings.Contains(string(resp.Body()), "connection refused") {
		t.Error("internal error details must not leak")
	}
}

func TestNotifierPanicDoesNotFailRequest(t *testing.T) {
	s := newTestServer(nil)
	s.notifier.panics = true

	resp := s.do(http.MethodPost, "/reservations", createBody).Result()
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
}

func TestLegacyPrefix(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodPost, "/api/reservations", createBody).Result()
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	created := decodeReservation(t, resp.Body())

	resp = s.do(http.MethodGet, "/reservations/"+itoa(created.ID), "").Result()
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("reservation created via /api should be visible on /reservations, status = %d", resp.StatusCode())
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodGet, "/healthz", "").Result()
	if len(resp.Header.Peek("X-Request-Id")) == 0 {
		t.Error("expected X-Request-Id response header")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
