package models

// LoginRequest is the admin login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token issued after a successful login.
type LoginResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// ErrorResponse is the uniform error body returned by handlers.
type ErrorResponse struct {
	Message string `json:"message"`
}
