// Package validation checks structural and business-rule invariants on every
// entity before it is persisted. Checks are pure and local: no database
// access, no coercion. The first violation is reported as a typed error
// naming the offending entity and field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/username/tradedata/src/models"
	"github.com/username/tradedata/src/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json (column) names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("iso8601", isISO8601); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("enumci", isEnumCI); err != nil {
		panic(err)
	}
	return v
}

func isISO8601(fl validator.FieldLevel) bool {
	_, err := utils.ParseISOTimestamp(fl.Field().String())
	return err == nil
}

// enumci checks case-insensitive membership in a space-separated enumeration,
// e.g. `enumci=buy sell`.
func isEnumCI(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	for _, allowed := range strings.Fields(fl.Param()) {
		if value == allowed {
			return true
		}
	}
	return false
}

// ValidationError reports a single structural or business-rule violation.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Reason)
}

func check(entity string, value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Entity: entity, Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return err
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be non-empty"
	case "uuid":
		return fmt.Sprintf("invalid UUID format: %v", fe.Value())
	case "iso8601":
		return fmt.Sprintf("invalid ISO timestamp: %v", fe.Value())
	case "enumci":
		return fmt.Sprintf("must be one of [%s], got %v", strings.Join(strings.Fields(fe.Param()), ", "), fe.Value())
	case "gt":
		return fmt.Sprintf("must be positive, got %v", fe.Value())
	case "gte":
		return fmt.Sprintf("must be non-negative, got %v", fe.Value())
	case "nefield":
		return "opening and closing transaction ids must be different"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

func ValidateTransaction(tx *models.Transaction) error {
	return check("Transaction", tx)
}

func ValidateStockOrder(order *models.StockOrder) error {
	return check("StockOrder", order)
}

func ValidateOptionOrder(order *models.OptionOrder) error {
	return check("OptionOrder", order)
}

func ValidateOptionLeg(leg *models.OptionLeg) error {
	return check("OptionLeg", leg)
}

func ValidateExecution(execution *models.Execution) error {
	return check("Execution", execution)
}

func ValidatePosition(position *models.Position) error {
	return check("Position", position)
}

func ValidateTransactionLink(link *models.TransactionLink) error {
	return check("TransactionLink", link)
}
