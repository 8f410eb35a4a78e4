// Package forms holds the raw text of the event and task editors and turns it
// into API payloads. Nothing here talks to the network.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"atelier/pkg/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their on-screen label
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// FieldError is one inline message next to a field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failed field in form order
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid form"
	}
	return e.Fields[0].Message
}

// For returns the message for field, empty when it passed
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// check runs the struct tags and converts failures to field messages
func check(form any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(form)
	if err == nil {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		switch fe.Param() {
		case DateLayout:
			return fmt.Sprintf("%s must look like YYYY-MM-DD", fe.Field())
		case TimeLayout:
			return fmt.Sprintf("%s must look like HH:MM", fe.Field())
		}
	case "number":
		return fmt.Sprintf("%s must be a whole number of minutes", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// combine parses already validated date and time inputs in loc
func combine(date, clock string, loc *time.Location) (time.Time, error) {
	if clock == "" {
		clock = "00:00"
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "x":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseMinutes(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SplitList splits a comma separated input, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var (
	tagPattern      = regexp.MustCompile(`\+(\w[\w-]*)`)
	tagStripPattern = regexp.MustCompile(`\s*\+\w[\w-]*\s*`)
)

// ExtractTags pulls +tag words out of a one-line task, e.g. "Frame prints +shop"
// gives "Frame prints" and [shop]
func ExtractTags(text string) (string, []string) {
	var tags []string
	for _, match := range tagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	title := strings.TrimSpace(tagStripPattern.ReplaceAllString(text, " "))
	return title, models.NormalizeTags(tags)
}

// Field describes one editable input of a form
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Value       *string
}
