// Package form validates and shapes tweet creation input before it reaches
// the repository, and carries the widget attributes the templates render.
package form

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// TweetForm holds the user-editable tweet fields. The image part is optional
// and handled separately as a file upload; form rules do not constrain it.
type TweetForm struct {
	Text string `form:"text" validate:"required,max=280"`
}

// Validate returns a map of field name to user-facing message. An empty map
// means the form is valid.
func (f TweetForm) Validate() map[string]string {
	fieldErrors := make(map[string]string)
	err := validate.Struct(f)
	if err == nil {
		return fieldErrors
	}
	for _, fe := range err.(validator.ValidationErrors) {
		switch fe.Tag() {
		case "required":
			fieldErrors[fe.Field()] = "This field is required."
		case "max":
			fieldErrors[fe.Field()] = "Ensure this value has at most " + fe.Param() + " characters."
		default:
			fieldErrors[fe.Field()] = "Enter a valid value."
		}
	}
	return fieldErrors
}

// Widget attributes rendered on the creation form.
const (
	TextPlaceholder = "What's happening?"
	TextMaxLength   = 280
	TextRows        = 4
	TextLabel       = "Tweet"
	ImageAccept     = "image/*"
	ImageLabel      = "Image (optional)"
)
