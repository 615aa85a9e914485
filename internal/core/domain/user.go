package domain

// User represents a back-office user of the application.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// Actor is the authenticated identity performing an operation, carried from the
// auth middleware into the service layer.
type Actor struct {
	UserID string
	Role   Role
}
