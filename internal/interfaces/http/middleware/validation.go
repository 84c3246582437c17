package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/interfaces/http/dto"
)

var setupValidatorOnce sync.Once

// SetupValidator configures gin's validator engine once per process: field
// names come from json or form tags, and the jobstate and platform tags check
// values against the integration domain.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("jobstate", func(fl validator.FieldLevel) bool {
			return integration.JobState(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			_, err := integration.ParsePlatformCode(fl.Field().String())
			return err == nil
		})
	})
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// ValidationDetails turns a binding error into per-field details. Decode errors
// such as malformed JSON produce one detail without a field.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []dto.ValidationDetail{{Message: err.Error()}}
	}
	out := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = dto.ValidationDetail{Field: fe.Field(), Message: describe(fe)}
	}
	return out
}

// HandleValidationError answers 400 ERR_VALIDATION for a failed bind
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", c.GetString(RequestIDKey), ValidationDetails(err)))
}

func describe(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param() + unit
	case "max":
		return "Must be at most " + fe.Param() + unit
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "jobstate":
		return "Must be one of: pending sent accepted rejected error cancelled"
	case "platform":
		return "Invalid platform code"
	case "uuid":
		return "Invalid UUID format"
	default:
		return "Invalid value"
	}
}
