package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var initOnce sync.Once

// Init configures the validator behind gin's binding to report form field
// names and registers the labels used in user facing messages.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				if label := fld.Tag.Get("label"); label != "" {
					return label
				}
				name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// Message converts a binding error into a single sentence for a form page.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return capitalize(field) + " is required."
		case "email":
			return capitalize(field) + " must be a valid email."
		case "max":
			return capitalize(field) + " is too long."
		default:
			return capitalize(field) + " is invalid."
		}
	}

	return "Please check the form and try again."
}

func capitalize(s string) string {
	if s == "" {
		return "Field"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
