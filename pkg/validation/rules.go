package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rules maps a field name to its validator tag expression.
type Rules map[string]string

// OperationRules keys rule sets by operation name, so create and update
// can validate the same entity differently.
type OperationRules map[string]Rules

var rulesValidator = newRulesValidator()

func newRulesValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("alphanumdash", alphanumDash)
	v.RegisterAlias("slug", "lowercase,alphanumdash")
	return v
}

// Check validates values against the rule set for op. It returns a
// field->message map, empty when everything passes. Fields without a
// rule are ignored.
func (or OperationRules) Check(op string, values map[string]string) map[string]string {
	rules, ok := or[op]
	if !ok {
		return nil
	}
	details := make(map[string]string)
	for field, rule := range rules {
		if err := rulesValidator.Var(values[field], rule); err != nil {
			details[field] = varErrorMessage(err, rule)
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func varErrorMessage(err error, rule string) string {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return formatFieldError(fe.Tag(), fe.Param(), fe.Kind())
	}
	return fmt.Sprintf("must satisfy '%s'", strings.TrimSpace(rule))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
