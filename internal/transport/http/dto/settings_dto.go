package dto

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ProfileResponse struct {
	User      UserResponse `json:"user"`
	AvatarURL string       `json:"avatar_url,omitempty"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
