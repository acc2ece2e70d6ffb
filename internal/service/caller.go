package service

import (
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
)

// Caller 当前请求的身份，匿名请求为零值
type Caller struct {
	UserID uint
	Role   model.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.Admin
}

func (c Caller) Anonymous() bool {
	return c.UserID == 0
}

// CanAccess 本人或管理员
func (c Caller) CanAccess(ownerID uint) bool {
	return c.IsAdmin() || (!c.Anonymous() && c.UserID == ownerID)
}

func CallerFromClaims(claims *util.Claims) Caller {
	if claims == nil {
		return Caller{}
	}
	return Caller{UserID: claims.UserID, Role: claims.Role}
}
