package service

import (
	"context"
	"errors"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo UserStore
}

func NewUserService(userRepo UserStore) *UserService {
	return &UserService{UserRepo: userRepo}
}

type CreateUserReq struct {
	RegisterReq
	Role model.UserRole `json:"role"`
}

type UpdateUserReq struct {
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
	Email     *string         `json:"email" binding:"omitempty,email"`
	Password  *string         `json:"password" binding:"omitempty,min=6"`
	Role      *model.UserRole `json:"role"`
	ContactNo *string         `json:"contactNo"`
	Address   *string         `json:"address"`
}

func validRole(role model.UserRole) bool {
	return role == model.RoleUser || role == model.Admin
}

func (s *UserService) find(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// Create 管理员创建用户，可指定角色
func (s *UserService) Create(ctx context.Context, req CreateUserReq) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !validRole(role) {
		return nil, util.Validationf("invalid role %q", role)
	}

	email := normalizeEmail(req.Email)
	if err := ensureEmailFree(ctx, s.UserRepo, email, 0); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hashed,
		Role:      role,
		ContactNo: req.ContactNo,
		Address:   req.Address,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List 列出除调用者本人外的全部用户
func (s *UserService) List(ctx context.Context, caller Caller) ([]model.User, error) {
	return s.UserRepo.ListExcept(ctx, caller.UserID)
}

func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*model.User, error) {
	if !caller.CanAccess(id) {
		return nil, util.ErrPermissionDenied
	}
	return s.find(ctx, id)
}

func (s *UserService) Update(ctx context.Context, caller Caller, id uint, req UpdateUserReq) (*model.User, error) {
	if !caller.CanAccess(id) {
		return nil, util.ErrPermissionDenied
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.ContactNo != nil {
		user.ContactNo = *req.ContactNo
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := ensureEmailFree(ctx, s.UserRepo, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.Role != nil && *req.Role != user.Role {
		// 只有管理员可以修改角色
		if !caller.IsAdmin() {
			return nil, util.ErrPermissionDenied
		}
		if !validRole(*req.Role) {
			return nil, util.Validationf("invalid role %q", *req.Role)
		}
		user.Role = *req.Role
	}

	if err := s.UserRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.UserRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}
