package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/abiosite/abio-api/pkg/helpers"
)

var (
	hexColorRe = regexp.MustCompile(`^#[a-zA-Z0-9]{3,8}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	fontNameRe = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// Messages that read as complete sentences and are returned without the field prefix.
const (
	MsgPasswordRules     = "Password must include a letter, a number, and a special character"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgInvalidJSON       = "Invalid JSON format. Please check your request body."
	MsgInvalidPayload    = "Invalid request payload"
)

// Init configures the global validator used by Gin's binding.
//   - Uses JSON tag names in errors.
//   - Registers the password, hexcolor, username and fontname tags.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs tag naming and the custom tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return helpers.ValidatePasswordStrength(fl.Field().String())
	})
	// replaces the builtin hexcolor, which rejects 4 and 8 digit forms with alpha
	_ = v.RegisterValidation("hexcolor", func(fl validator.FieldLevel) bool {
		return IsHexColor(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fontname", func(fl validator.FieldLevel) bool {
		return fontNameRe.MatchString(fl.Field().String())
	})
}

func IsHexColor(s string) bool { return hexColorRe.MatchString(s) }

func IsUsername(s string) bool { return usernameRe.MatchString(s) }

// FirstMessage returns the message of the first violated rule.
func FirstMessage(err error) string {
	if err == nil {
		return ""
	}
	if isJSONError(err) {
		return MsgInvalidJSON
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}
	return MsgInvalidPayload
}

// ToDetails converts validation/binding errors into a map[field]message suitable for the errors envelope field.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}
	if isJSONError(err) {
		return map[string]string{"payload": MsgInvalidJSON}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = fieldMessage(fe)
		}
		return out
	}
	return map[string]string{"payload": MsgInvalidPayload}
}

func isJSONError(err error) bool {
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	return errors.As(err, &se) || errors.As(err, &ute) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// fieldPath strips the root struct name from the namespace: "req.links[0].id" -> "links[0].id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "password":
		return MsgPasswordRules
	case "eqfield":
		if strings.HasPrefix(strings.ToLower(fe.Param()), "password") {
			return MsgPasswordsMismatch
		}
	}
	return fe.Field() + " " + formatFieldError(fe)
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "eqfield":
		return "must match " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "numeric":
		return "must be numeric"
	case "hexcolor":
		return "must be a hex color such as #fff or #1a2b3c"
	case "username":
		return "may only contain letters, numbers, underscores and hyphens (3-30 characters)"
	case "fontname":
		return "may only contain letters, numbers and hyphens"
	case "dive":
		return "contains an invalid item"
	default:
		if param != "" {
			return fmt.Sprintf("failed the '%s=%s' rule", tag, param)
		}
		return fmt.Sprintf("failed the '%s' rule", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
