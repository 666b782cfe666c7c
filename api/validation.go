package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	iataPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the iata and isodate tags on gin's validator
// and reports fields by their JSON names.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not validator/v10")
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
			return iataPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		}); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.DateOnly, fl.Field().String())
			return err == nil
		})
	})
	return registerErr
}

// bindMessage turns a binding error into a message for the client.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return fmt.Sprintf("Invalid value for %s", typeErr.Field)
		case errors.As(err, &syntax):
			return "Invalid JSON body"
		}
		return "Invalid request body"
	}

	var missing, problems []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "iata":
			problems = append(problems, fe.Field()+" must be a 3-letter IATA code")
		case "isodate":
			problems = append(problems, fe.Field()+" must be a date in YYYY-MM-DD format")
		case "min", "gte":
			problems = append(problems, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			problems = append(problems, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fe.Field()+" is invalid")
		}
	}
	if len(missing) > 0 {
		problems = append([]string{"Missing required fields: " + strings.Join(missing, ", ")}, problems...)
	}
	return strings.Join(problems, "; ")
}
