package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "iso date", in: "2024-05-15", want: "2024-05-15"},
		{name: "surrounding spaces", in: " 2024-05-16 ", want: "2024-05-16"},
		{name: "wrong layout", in: "15/05/2024", wantErr: true},
		{name: "invalid day", in: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "18:30", want: "18:30"},
		{in: "10:00", want: "10:00"},
		{in: "19:00:00", want: "19:00"},
		{in: "07:05:09", want: "07:05:09"},
		{in: "25:00", wantErr: true},
		{in: "evening", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateAndTimeJSON(t *testing.T) {
	type payload struct {
		Date Date      `json:"reservation_date"`
		Time TimeOfDay `json:"reservation_time"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"reservation_date":"2025-01-01","reservation_time":"10:00"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Date.Year() != 2025 || p.Date.Month() != time.January || p.Date.Day() != 1 {
		t.Errorf("unexpected date %v", p.Date)
	}
	if p.Time.Hour() != 10 || p.Time.Minute() != 0 {
		t.Errorf("unexpected time %v", p.Time)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"reservation_date":"2025-01-01","reservation_time":"10:00"}`
	if string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}
}

func TestDateNull(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("expected zero date, got %v", d)
	}

	out, _ := json.Marshal(d)
	if string(out) != "null" {
		t.Errorf("zero date marshals to %s, want null", out)
	}
}

func TestDateRejectsNonString(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte("20240515"), &d); err == nil {
		t.Error("expected error for numeric date")
	}
}

func TestScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.May, 17, 13, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2024-05-17" {
		t.Errorf("scan date = %s", d)
	}

	var tod TimeOfDay
	if err := tod.Scan([]byte("20:00:00")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if tod.String() != "20:00" {
		t.Errorf("scan time = %s", tod)
	}

	if err := tod.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestContactMethodNames(t *testing.T) {
	r := Reservation{ContactMethods: []ContactMethod{
		{Name: ContactMethodSMS},
		{Name: ContactMethodEmail},
		{Name: ContactMethodSMS},
	}}

	got := r.ContactMethodNames()
	if len(got) != 2 || got[0] != "Email" || got[1] != "SMS" {
		t.Errorf("ContactMethodNames() = %v", got)
	}

	empty := (&Reservation{}).ContactMethodNames()
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestParseChannelKind(t *testing.T) {
	tests := map[string]ChannelKind{
		"Email":          ChannelEmail,
		"email":          ChannelEmail,
		"SMS":            ChannelSMS,
		"sms":            ChannelSMS,
		"Phone":          ChannelUnsupported,
		"Carrier Pigeon": ChannelUnsupported,
	}
	for in, want := range tests {
		if got := ParseChannelKind(in); got != want {
			t.Errorf("ParseChannelKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTimeOfDayUnsetVersusMidnight(t *testing.T) {
	var unset TimeOfDay
	out, _ := json.Marshal(unset)
	if string(out) != "null" {
		t.Errorf("unset time marshals to %s, want null", out)
	}
	if v, err := unset.Value(); err != nil || v != nil {
		t.Errorf("unset time Value() = %v, %v, want nil", v, err)
	}

	midnight, err := ParseTimeOfDay("00:00")
	if err != nil {
		t.Fatalf("ParseTimeOfDay(00:00) error = %v", err)
	}
	if midnight.IsZero() {
		t.Fatal("midnight must not be treated as unset")
	}
	out, _ = json.Marshal(midnight)
	if string(out) != `"00:00"` {
		t.Errorf("midnight marshals to %s", out)
	}
	if v, _ := midnight.Value(); v != "00:00:00" {
		t.Errorf("midnight Value() = %v", v)
	}
	if v, _ := NewTimeOfDay(0, 0, 0).Value(); v != "00:00:00" {
		t.Errorf("NewTimeOfDay(0,0,0) Value() = %v", v)
	}

	var scanned TimeOfDay
	if err := scanned.Scan(nil); err != nil || !scanned.IsZero() {
		t.Errorf("Scan(nil) = %v, zero = %v", err, scanned.IsZero())
	}

	var decoded struct {
		Time TimeOfDay `json:"reservation_time"`
	}
	if err := json.Unmarshal([]byte(`{}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, _ = json.Marshal(decoded)
	if string(out) != `{"reservation_time":null}` {
		t.Errorf("absent time echoes as %s", out)
	}
}
