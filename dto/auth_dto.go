package dto

// Required fields are checked by auth.Service so missing input reports the
// same validation error shape as malformed input.
type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type TwoFactorDTO struct {
	Code string `json:"code"`
}
