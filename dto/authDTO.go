package dto

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Name     string          `json:"name" binding:"required"`
	Role     string          `json:"role" binding:"omitempty,oneof=manager worker"`
	Captcha  *CaptchaRequest `json:"captcha"`
}

type CaptchaRequest struct {
	Token  string `json:"token" binding:"required"`
	Action string `json:"action"`
}

type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}
