package dto

type LoginDTO struct {
	Phone    string `json:"phone" validate:"required,max=16"`
	Password string `json:"password" validate:"required,min=4"`
}

type RegisterDTO struct {
	Phone    string `json:"phone" validate:"required,max=16"`
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MANAGER ZAMIR USTANOVCHIK ZAVOD"`
}

type UpdateUserDTO struct {
	Phone    *string `json:"phone" validate:"omitempty,max=16"`
	Name     *string `json:"name" validate:"omitempty,max=128"`
	Password *string `json:"password" validate:"omitempty,min=4"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN MANAGER ZAMIR USTANOVCHIK ZAVOD"`
}

type TokenDTO struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}
