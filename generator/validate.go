package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxCategories          = 8
	MaxRoles               = 10
	MaxChannelsPerCategory = 6
)

var requiredSections = []string{"server_config", "categories", "roles"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a decoded candidate document and returns the typed Plan.
// Structural rules run first, in order, and the first failure is returned;
// field types and ranges are checked on the typed form afterwards.
func Validate(doc any) (Plan, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return Plan{}, &ValidationError{Reason: "missing required sections (server_config, categories, roles)"}
	}
	for _, key := range requiredSections {
		if _, ok := obj[key]; !ok {
			return Plan{}, &ValidationError{Reason: fmt.Sprintf("missing required section %q", key)}
		}
	}

	categories, okCat := obj["categories"].([]any)
	roles, okRoles := obj["roles"].([]any)
	if !okCat || !okRoles {
		return Plan{}, &ValidationError{Reason: "categories and roles must be lists"}
	}
	if len(categories) > MaxCategories {
		return Plan{}, &ValidationError{Reason: fmt.Sprintf("too many categories (maximum %d)", MaxCategories)}
	}
	if len(roles) > MaxRoles {
		return Plan{}, &ValidationError{Reason: fmt.Sprintf("too many roles (maximum %d)", MaxRoles)}
	}
	for i, raw := range categories {
		cat, ok := raw.(map[string]any)
		if !ok {
			return Plan{}, &ValidationError{Reason: fmt.Sprintf("category %d is not an object", i+1)}
		}
		channels, _ := cat["channels"].([]any)
		if len(channels) > MaxChannelsPerCategory {
			name, _ := cat["name"].(string)
			return Plan{}, &ValidationError{Reason: fmt.Sprintf("too many channels in category %q (maximum %d)", name, MaxChannelsPerCategory)}
		}
	}

	return typed(obj)
}

func typed(obj map[string]any) (Plan, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return Plan{}, &ValidationError{Reason: err.Error()}
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return Plan{}, &ValidationError{Reason: typeReason(err)}
	}
	for i := range plan.Categories {
		for j := range plan.Categories[i].Channels {
			ch := &plan.Categories[i].Channels[j]
			ch.Type = strings.ToLower(strings.TrimSpace(ch.Type))
		}
	}
	if err := validate.Struct(plan); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Plan{}, &ValidationError{Reason: fieldReason(verrs[0])}
		}
		return Plan{}, &ValidationError{Reason: err.Error()}
	}
	return plan, nil
}

func typeReason(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return fmt.Sprintf("field %q must be a %s, not a %s", te.Field, kindName(te.Type), te.Value)
	}
	return err.Error()
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice:
		return "list"
	case reflect.Map, reflect.Struct, reflect.Pointer:
		return "object"
	}
	return t.String()
}

func fieldReason(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Plan.")
	switch fe.Tag() {
	case "hexcolor", "len":
		return fmt.Sprintf("%s must be a hex color like #FF0000, got %v", field, fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
