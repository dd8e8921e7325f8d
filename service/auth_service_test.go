package service

import (
	"context"
	"errors"
	"testing"
)

func TestAttemptAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.Auth().AttemptAdmin(ctx, "admin@towtruck.com", "password")
	if err != nil {
		t.Fatal(err)
	}
	if admin.ID != f.admin.ID {
		t.Fatalf("admin id = %d, want %d", admin.ID, f.admin.ID)
	}

	for _, tc := range []struct{ email, password string }{
		{"admin@towtruck.com", "wrong"},
		{"nobody@towtruck.com", "password"},
	} {
		if _, err := f.svc.Auth().AttemptAdmin(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("AttemptAdmin(%q, %q) = %v, want ErrInvalidCredentials", tc.email, tc.password, err)
		}
	}
}

func TestAttemptDriverApprovalGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@example.com")

	if _, err := f.svc.Auth().AttemptDriver(ctx, "ann@example.com", "secret123"); !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("pending login = %v, want ErrPendingApproval", err)
	}
	// a wrong password never reveals the approval state
	if _, err := f.svc.Auth().AttemptDriver(ctx, "ann@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}

	f.approve(t, ann.ID)

	d, err := f.svc.Auth().AttemptDriver(ctx, "ann@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != ann.ID {
		t.Fatalf("driver id = %d, want %d", d.ID, ann.ID)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@example.com")

	if _, err := f.svc.Auth().Resolve(ctx, "driver", ann.ID); !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("resolve pending = %v", err)
	}
	f.approve(t, ann.ID)

	id, err := f.svc.Auth().Resolve(ctx, "driver", ann.ID)
	if err != nil {
		t.Fatal(err)
	}
	if id.DisplayName() != "Ann" || id.Guard() != "driver" {
		t.Fatalf("identity = %v/%v", id.Guard(), id.DisplayName())
	}

	if _, err := f.svc.Auth().Resolve(ctx, "admin", 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolve unknown admin = %v", err)
	}
}
