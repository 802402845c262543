package course

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/eduspace/backend/core"
)

// A course-outcome tag classifies an assignment or material against a
// curriculum outcome: "CO-" followed by one or more digits, case-sensitive.
var (
	coTag      = "cotag"
	coTagText  = "must be of the form CO-<number>"
	coTagRegex = regexp.MustCompile(`^CO-[0-9]+$`)
)

func init() {
	_ = core.Validate.RegisterValidation(coTag, coTagValidation)
	core.RegisterCustomTranslation(coTag, coTagText)
}

func coTagValidation(fl validator.FieldLevel) bool {
	return ValidCOTag(fl.Field().String())
}

// ValidCOTag reports whether s is a well-formed course-outcome tag.
func ValidCOTag(s string) bool {
	return coTagRegex.MatchString(s)
}
