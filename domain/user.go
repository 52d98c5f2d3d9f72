package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles.
type Role uint8

const (
	RoleUser Role = iota + 1
	RolePharmacy
	RolePHC
	RoleAdmin
	RoleOversight
)

// Area is a role-gated section of the application.
type Area uint8

const (
	AreaPublic Area = iota + 1
	AreaPharmacy
	AreaPHC
	AreaAdmin
	AreaOversight
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RolePharmacy:
		return "pharmacy"
	case RolePHC:
		return "phc"
	case RoleAdmin:
		return "admin"
	case RoleOversight:
		return "oversight"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePharmacy, RolePHC, RoleAdmin, RoleOversight:
		return true
	default:
		return false
	}
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "pharmacy":
		return RolePharmacy, nil
	case "phc":
		return RolePHC, nil
	case "admin":
		return RoleAdmin, nil
	case "oversight":
		return RoleOversight, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: invalid role %d", ErrValidation, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Area is the section a role lands in after sign-in.
func (r Role) Area() Area {
	switch r {
	case RolePharmacy:
		return AreaPharmacy
	case RolePHC:
		return AreaPHC
	case RoleAdmin:
		return AreaAdmin
	case RoleOversight:
		return AreaOversight
	case RoleUser:
		return AreaPublic
	default:
		return AreaPublic
	}
}

// HomePath is the route a role is redirected to.
func (r Role) HomePath() string {
	switch r.Area() {
	case AreaPharmacy:
		return "/pharmacy"
	case AreaPHC:
		return "/phc"
	case AreaAdmin:
		return "/admin"
	case AreaOversight:
		return "/oversight"
	case AreaPublic:
		return "/"
	default:
		return "/"
	}
}

// CanAccess is the role check guarding each area. Admins may enter every area.
func (r Role) CanAccess(area Area) bool {
	switch area {
	case AreaPublic:
		return r.Valid()
	case AreaPharmacy:
		return r == RolePharmacy || r == RoleAdmin
	case AreaPHC:
		return r == RolePHC || r == RoleAdmin
	case AreaOversight:
		return r == RoleOversight || r == RoleAdmin
	case AreaAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}

// User is the mock session record persisted to local storage.
type User struct {
	UID       string    `json:"uid"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
