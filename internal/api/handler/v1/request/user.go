package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/vietanh2810/inventory-api/internal/domain"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	usernameRegexPattern = `^[\w.@+-]+$`
)

var (
	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
	errInvalidUsername = errors.New("letters, digits and @/./+/-/_ only")

	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
	usernameExp = regexp2.MustCompile(usernameRegexPattern, regexp2.None)
)

func matches(exp *regexp2.Regexp, errMsg error) validation.Rule {
	return validation.By(func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return nil
		}
		if s == "" {
			return nil
		}
		ok, err := exp.MatchString(s)
		if err != nil || !ok {
			return errMsg
		}
		return nil
	})
}

// present prepends validation.NotNil unless the request is a partial
// update.
func present(partial bool, rules ...validation.Rule) []validation.Rule {
	if partial {
		return rules
	}

	return append([]validation.Rule{validation.NotNil}, rules...)
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.RuneLength(1, 150), matches(usernameExp, errInvalidUsername)),
		validation.Field(&req.Email, validation.Required, validation.RuneLength(1, 254), is.Email),
		validation.Field(&req.Password, validation.Required, matches(passwordExp, errInvalidPassword)),
	)
}

func (req *CreateUserRequest) ToDomain() domain.User {
	return domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

// UpdateUserRequest serves PUT and PATCH. PUT requires username and
// email; a nil field is left untouched on PATCH.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (req *UpdateUserRequest) Validate(partial bool) error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, present(partial, validation.NilOrNotEmpty, validation.RuneLength(1, 150), matches(usernameExp, errInvalidUsername))...),
		validation.Field(&req.Email, present(partial, validation.NilOrNotEmpty, validation.RuneLength(1, 254), is.Email)...),
		validation.Field(&req.Password, validation.NilOrNotEmpty, matches(passwordExp, errInvalidPassword)),
	)
}

func (req *UpdateUserRequest) ToPatch() domain.UserPatch {
	return domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}
