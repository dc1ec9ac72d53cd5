package types

// RegisterRequest is the body of POST /users/.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// TagRequest creates a tag. An empty slug is derived from the name.
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,len=7,hexcolor"`
	Slug  string `json:"slug" binding:"omitempty,max=200,slug"`
}

type TagUpdateRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=200"`
	Color *string `json:"color" binding:"omitempty,len=7,hexcolor"`
	Slug  *string `json:"slug" binding:"omitempty,min=1,max=200,slug"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

type IngredientUpdateRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=200"`
	MeasurementUnit *string `json:"measurement_unit" binding:"omitempty,min=1,max=200"`
}
