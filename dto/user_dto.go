package dto

type CreateUserDTO struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleDTO struct {
	Role string `json:"role" binding:"required"`
}

type UpdatePermissionsDTO struct {
	Permissions []string `json:"permissions"`
}
