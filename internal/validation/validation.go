// Package validation enforces the field-level rules for users, groups and
// memberships and reports failures as a structured field/message list.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/grouproster/grouproster/internal/db/models"
)

// MinPasswordLength is the shortest accepted password, counted in characters.
const MinPasswordLength = 8

// Intent tells the validator what the caller is about to persist.
type Intent struct {
	// SetPassword is true when a new password digest is being computed,
	// i.e. on creation or on an explicit password change.
	SetPassword bool
}

var (
	// Create is the intent of a new user record.
	Create = Intent{SetPassword: true}
	// Update is the intent of an update that leaves the password alone.
	Update = Intent{SetPassword: false}
	// ChangePassword is the intent of an explicit password change.
	ChangePassword = Intent{SetPassword: true}
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator() //nolint:gochecknoglobals

type userRules struct {
	Name  string `field:"name"  validate:"required,notblank"`
	Email string `field:"email" validate:"required,email,dotted_domain"`
}

type passwordRules struct {
	Presence string `field:"password" validate:"required"`
	Length   string `field:"password" validate:"min=8"`
}

type groupRules struct {
	Name string `field:"name" validate:"required,notblank"`
	Slug string `field:"slug" validate:"required,slug"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("field")
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "dotted_domain", func(fl validator.FieldLevel) bool {
		return hasDottedDomain(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// hasDottedDomain requires the domain part of an address to carry a TLD.
func hasDottedDomain(address string) bool {
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return false
	}

	domain := address[at+1:]
	dot := strings.LastIndexByte(domain, '.')

	return dot > 0 && dot < len(domain)-1
}

// User checks a user record. The caller is expected to have normalized it.
// Uniqueness is not checked here; it needs the store.
func User(u *models.User, intent Intent) Errors {
	var errs Errors

	errs = append(errs, check(userRules{Name: u.Name, Email: u.Email})...)

	if intent.SetPassword {
		errs = append(errs, check(passwordRules{Presence: u.Password, Length: u.Password})...)
	}

	return errs
}

// Group checks a group record. The caller is expected to have normalized it.
func Group(g *models.Group) Errors {
	return check(groupRules{Name: g.Name, Slug: g.Slug})
}

func check(rules any) Errors {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// only reachable on a programming error (non-struct rules)
		panic(fmt.Sprintf("validation: %v", err))
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, translate(fe))
	}

	return out
}

func translate(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required", "notblank":
		return FieldError{Field: fe.Field(), Kind: KindPresence, Message: MsgBlank}
	case "min":
		return FieldError{Field: fe.Field(), Kind: KindLength, Message: fmt.Sprintf(MsgTooShort, fe.Param())}
	default:
		return FieldError{Field: fe.Field(), Kind: KindFormat, Message: MsgInvalid}
	}
}

// NotDerived builds the failure for a field whose derived value came out empty.
func NotDerived(field string) FieldError {
	return FieldError{Field: field, Kind: KindFormat, Message: MsgNotDerived}
}

// Taken builds the uniqueness failure for field.
func Taken(field string) FieldError {
	return FieldError{Field: field, Kind: KindUniqueness, Message: MsgTaken}
}
