package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *TokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (req *RefreshRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Refresh, validation.Required),
	)
}
