package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// E164-like phone: optional +, digits 7-15 length
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Setup registers the custom tags on gin's validator engine.
func Setup() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(wireName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("pay_unit", ValidPayUnit)
	_ = v.RegisterValidation("duration_unit", ValidDurationUnit)
}

// wireName reports fields by their json or form name so error keys match
// what the client sent.
func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(strings.NewReplacer(" ", "", "-", "").Replace(val))
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func ValidPayUnit(fl validator.FieldLevel) bool {
	return domain.PayUnit(fl.Field().String()).Valid()
}

func ValidDurationUnit(fl validator.FieldLevel) bool {
	return domain.DurationUnit(fl.Field().String()).Valid()
}
