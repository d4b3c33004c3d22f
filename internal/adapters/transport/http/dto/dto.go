package dto

import (
	"regexp"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	"github.com/go-playground/validator/v10"
)

type SignupDTO struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=8"`
}

// LoginDTO is an OAuth2 password form: the username field carries the email.
type LoginDTO struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type RequestEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequestDTO struct {
	Email string `form:"email" validate:"required,email"`
}

type PasswordResetDTO struct {
	Token       string `form:"token"        validate:"required"`
	NewPassword string `form:"new_password" validate:"required,min=6,max=8"`
}

type ContactDTO struct {
	FirstName string     `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string     `json:"last_name"  validate:"required,min=1,max=50"`
	Email     string     `json:"email"      validate:"required,email,max=100"`
	Phone     string     `json:"phone"      validate:"required,phone"`
	Birthday  model.Date `json:"birthday"`
	DataAdd   *string    `json:"data_add"   validate:"omitempty,max=250"`
}

type ListContactsDTO struct {
	Limit  int `form:"limit,default=10" validate:"min=10,max=500"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}

type SearchContactsDTO struct {
	FirstName string `form:"first_name" validate:"omitempty,min=1"`
	LastName  string `form:"last_name"  validate:"omitempty,min=1"`
	Email     string `form:"email"`
}

type BirthdaysDTO struct {
	Days int `form:"days,default=7" validate:"min=0,max=366"`
}

var phoneRe = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// NewValidator returns a validator with the project's custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}
