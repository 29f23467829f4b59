package domain

import "errors"

// Principal is the authenticated caller of the API.
type Principal struct {
	Subject string
	Role    Role
}

// Role represents a caller's access level
type Role string

const (
	// RoleOperator can move money and delete transfers
	RoleOperator Role = "operator"

	// RoleViewer can only read balances and transfers
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleOperator || r == RoleViewer
}

// CanMutate checks if the role can record or delete movements
func (r Role) CanMutate() bool {
	return r == RoleOperator
}

// Authentication errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
