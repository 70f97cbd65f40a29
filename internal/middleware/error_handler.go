package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var jsonNamesOnce sync.Once

// UseJSONFieldNames makes validation errors report the json name of a field
// ("imageUrls") instead of the Go name ("ImageURLs").
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// ErrorHandler is the single place where errors pushed with c.Error are
// turned into responses. Unclassified errors become a 500 whose detail is
// only exposed outside production.
func ErrorHandler(environment string) gin.HandlerFunc {
	exposeDetail := environment != "production"

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := classify(err)

		if status >= http.StatusInternalServerError {
			logger.Log.Error("Unhandled request error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if exposeDetail {
				body["detail"] = err.Error()
			}
		}

		c.AbortWithStatusJSON(status, body)
	}
}

func classify(err error) (int, gin.H) {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		appErr         *apperrors.Error
	)

	switch {
	case errors.As(err, &validationErrs):
		details := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			details[fe.Field()] = validationMessage(fe)
		}
		return http.StatusBadRequest, gin.H{"error": "validation failed", "details": details}

	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, gin.H{"error": "invalid request body"}

	case errors.As(err, &typeErr):
		return http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid type for field %s", typeErr.Field)}

	case errors.As(err, &appErr):
		return apperrors.StatusFromKind(appErr.Kind), gin.H{"error": appErr.Error()}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, gin.H{"error": "duplicate value for a unique field"}

	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusConflict, gin.H{"error": "operation conflicts with related records"}

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, gin.H{"error": "resource not found"}
	}

	return http.StatusInternalServerError, gin.H{"error": "internal server error"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	}
	return "is invalid"
}
