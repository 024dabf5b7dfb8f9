package validator

// MaterialRequest is the body of both create and update. Update is a full replace,
// so the same required fields apply.
type MaterialRequest struct {
	Title       string  `json:"title" validate:"required,material_title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	CategoryID  *uint   `json:"category_id" validate:"required,min=1"`
	Duration    *string `json:"duration" validate:"omitempty,duration_label"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
