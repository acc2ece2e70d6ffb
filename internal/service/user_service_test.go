package service

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/service/servicetest"
	"qbank_backend/internal/util"
	"testing"
)

func newTestUserService(t *testing.T) (*UserService, *servicetest.Users) {
	t.Helper()
	users := servicetest.NewUsers(
		model.User{BaseModel: model.BaseModel{ID: 1}, Email: "admin@example.com", Role: model.Admin},
		model.User{BaseModel: model.BaseModel{ID: 2}, Email: "alice@example.com", Role: model.RoleUser},
		model.User{BaseModel: model.BaseModel{ID: 3}, Email: "bob@example.com", Role: model.RoleUser},
	)
	return NewUserService(users), users
}

var (
	adminCaller = Caller{UserID: 1, Role: model.Admin}
	aliceCaller = Caller{UserID: 2, Role: model.RoleUser}
)

func rolePtr(r model.UserRole) *model.UserRole { return &r }

func TestUserGetSelfOrAdmin(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller Caller
		id     uint
		err    error
	}{
		{"self", aliceCaller, 2, nil},
		{"other user", aliceCaller, 3, util.ErrForbidden},
		{"anonymous", Caller{}, 2, util.ErrForbidden},
		{"admin", adminCaller, 3, nil},
		{"admin missing user", adminCaller, 99, util.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := svc.Get(ctx, tc.caller, tc.id)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if user.ID != tc.id {
				t.Errorf("got user %d, want %d", user.ID, tc.id)
			}
		})
	}
}

func TestUserUpdatePermissions(t *testing.T) {
	svc, users := newTestUserService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, aliceCaller, 2, UpdateUserReq{FirstName: strPtr(" Alice ")})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.FirstName != "Alice" {
		t.Errorf("first name = %q", updated.FirstName)
	}

	if _, err := svc.Update(ctx, aliceCaller, 3, UpdateUserReq{FirstName: strPtr("Mallory")}); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("updating another user: expected forbidden, got %v", err)
	}

	if _, err := svc.Update(ctx, aliceCaller, 2, UpdateUserReq{Role: rolePtr(model.Admin)}); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("self promotion: expected forbidden, got %v", err)
	}
	stored, _ := users.FindByID(ctx, 2)
	if stored.Role != model.RoleUser {
		t.Fatalf("role changed to %q after rejected promotion", stored.Role)
	}

	// 角色未变化时普通用户也可以提交该字段
	if _, err := svc.Update(ctx, aliceCaller, 2, UpdateUserReq{Role: rolePtr(model.RoleUser)}); err != nil {
		t.Fatalf("unchanged role: %v", err)
	}

	promoted, err := svc.Update(ctx, adminCaller, 3, UpdateUserReq{Role: rolePtr(model.Admin)})
	if err != nil {
		t.Fatalf("admin promotion: %v", err)
	}
	if promoted.Role != model.Admin {
		t.Errorf("role = %q, want admin", promoted.Role)
	}
	if _, err := svc.Update(ctx, adminCaller, 2, UpdateUserReq{Role: rolePtr("owner")}); !errors.Is(err, util.ErrValidation) {
		t.Errorf("invalid role: expected validation error, got %v", err)
	}

	if _, err := svc.Update(ctx, aliceCaller, 2, UpdateUserReq{Email: strPtr("BOB@example.com")}); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("taken email: expected conflict, got %v", err)
	}
}

func TestUserCreateAndList(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserReq{RegisterReq: RegisterReq{Email: "x@example.com", Password: "secret1"}, Role: "owner"}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("invalid role: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateUserReq{RegisterReq: RegisterReq{Email: "Alice@Example.com", Password: "secret1"}}); !errors.Is(err, util.ErrConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	user, err := svc.Create(ctx, CreateUserReq{RegisterReq: RegisterReq{Email: " Carol@Example.com ", Password: "secret1"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Role != model.RoleUser || user.Email != "carol@example.com" {
		t.Errorf("user = %s/%s", user.Email, user.Role)
	}
	if user.Password == "secret1" {
		t.Error("password stored in plain text")
	}

	list, err := svc.List(ctx, adminCaller)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("listed %d users, want 3", len(list))
	}
	for _, u := range list {
		if u.ID == adminCaller.UserID {
			t.Error("caller included in list")
		}
	}
}
