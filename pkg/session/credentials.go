package session

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UserID is the opaque identifier the identity provider assigns.
type UserID string

// User is what a successful authentication yields.
type User struct {
	ID       UserID `json:"id"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// Credentials are the email/password pair of the login and register forms.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the credentials the way the login form does.
func (c Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
			}
			return errors.New("invalid " + strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
