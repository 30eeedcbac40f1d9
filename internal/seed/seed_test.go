package seed

import (
	"context"
	"testing"

	"reservationapi/internal/model"
	"reservationapi/internal/repository/memory"
)

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	methods := memory.NewContactMethods()
	store := memory.NewStore(methods)
	seeder := NewSeeder(store, methods)

	seeded, err := seeder.Run(ctx)
	if err != nil || !seeded {
		t.Fatalf("first run: seeded=%v err=%v", seeded, err)
	}

	if n, _ := methods.Count(ctx); n != 3 {
		t.Errorf("contact methods = %d, want 3", n)
	}
	all, _ := store.FindAll(ctx)
	if len(all) != 3 {
		t.Fatalf("reservations = %d, want 3", len(all))
	}

	want := map[string]string{
		"Zhack Ariya":   model.ContactMethodEmail,
		"Aladdin Alawi": model.ContactMethodSMS,
		"Zhack Alawi":   model.ContactMethodPhone,
	}
	for _, r := range all {
		names := r.ContactMethodNames()
		if len(names) != 1 || names[0] != want[r.Name] {
			t.Errorf("%s contact methods = %v, want %s", r.Name, names, want[r.Name])
		}
	}
	if all[0].ReservationDate.String() != "2024-05-15" || all[0].ReservationTime.String() != "18:30" {
		t.Errorf("unexpected first reservation %+v", all[0])
	}

	seeded, err = seeder.Run(ctx)
	if err != nil || seeded {
		t.Fatalf("second run: seeded=%v err=%v", seeded, err)
	}
	if n, _ := store.Count(ctx); n != 3 {
		t.Errorf("reservations after second run = %d, want 3", n)
	}
}

func TestSeeder_SkipsWhenContactMethodsExist(t *testing.T) {
	ctx := context.Background()
	methods := memory.NewContactMethods(model.ContactMethodEmail)
	store := memory.NewStore(methods)

	seeded, err := NewSeeder(store, methods).Run(ctx)
	if err != nil || seeded {
		t.Fatalf("seeded=%v err=%v", seeded, err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("reservations = %d, want 0", n)
	}
}
