package request

// SelectRequest is the request body for selecting a tile
type SelectRequest struct {
	Position *int `json:"position"`
}

// SwapRequest is the request body for swapping two tiles
type SwapRequest struct {
	A *int `json:"a"`
	B *int `json:"b"`
}

// LoginRequest is the request body for submitting a login window
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            string `json:"role,omitempty"`
}

// UpdateAccountRequest is the request body for an admin edit. Omitted fields
// are left unchanged; an empty password keeps the current one.
type UpdateAccountRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}
