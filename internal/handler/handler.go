package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"locallisting/internal/config"
	"locallisting/internal/service"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	UserService      service.UserService
	AuthService      service.AuthService
	ProfileService   service.ProfileService
	CategoryService  service.CategoryService
	ListingService   service.ListingService
	MessagingService service.MessagingService
	ReviewService    service.ReviewService
	TablesService    service.TablesService
	DB               HealthChecker
	Cfg              *config.Config
	Validate         *validator.Validate
	Log              *logrus.Logger
}

func NewHandlers(services *service.Service, db HealthChecker, cfg *config.Config, log *logrus.Logger) *Handlers {
	return &Handlers{
		UserService:      services.User,
		AuthService:      services.Auth,
		ProfileService:   services.Profile,
		CategoryService:  services.Category,
		ListingService:   services.Listing,
		MessagingService: services.Messaging,
		ReviewService:    services.Review,
		TablesService:    services.Tables,
		DB:               db,
		Cfg:              cfg,
		Validate:         NewValidator(),
		Log:              log,
	}
}

// NewValidator reports field errors under their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ctxKey string

const userIDKey ctxKey = "userID"

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// currentUser writes a 401 when the request carries no authenticated user.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, msgUnauthorized, http.StatusUnauthorized)
	}
	return userID, ok
}

// pathID reads a uuid path variable. Malformed ids are reported as 404.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := mux.Vars(r)[name]
	if _, err := uuid.Parse(id); err != nil {
		WriteError(w, msgNotFound, http.StatusNotFound)
		return "", false
	}
	return id, true
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, msgInvalidBody, http.StatusBadRequest)
		return false
	}

	if err := h.Validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			WriteValidationError(w, validationFields(verrs))
			return false
		}
		WriteError(w, msgInvalidBody, http.StatusBadRequest)
		return false
	}

	return true
}

func validationFields(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = validationMessage(fe)
	}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return "Invalid value."
	}
}
