package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser    Role = "USER"
	RoleSupport Role = "SUPPORT"
	RoleAdmin   Role = "ADMIN"
)

// NormalizeRole maps free-form role strings (including legacy aliases)
// onto the closed Role set. Unknown values normalize to RoleUser.
func NormalizeRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN", "ADMINISTRATOR", "SUPERADMIN", "SUPER_ADMIN", "OWNER":
		return RoleAdmin
	case "SUPPORT", "SUB_ADMIN", "MODERATOR", "STAFF":
		return RoleSupport
	default:
		return RoleUser
	}
}

// Plan is the subscription plan assigned to a user.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanStarter Plan = "STARTER"
	PlanPro     Plan = "PRO"
	PlanPAYG    Plan = "PAYG"
)

// ValidPlan reports whether p is a known plan.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanPAYG:
		return true
	}
	return false
}

// User represents a user entity. TokenBalanceMicro is the pay-as-you-go
// balance in micro-units; it is only meaningful for PAYG users but is
// kept on the user record for all plans.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	Plan              Plan       `json:"plan"`
	TokenBalanceMicro int64      `json:"tokenBalanceMicro"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	DeletedAt         *time.Time `json:"-"`
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
