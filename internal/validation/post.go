// Package validation holds request validation rules.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"moodfeed/internal/models"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists every failed field check. It is returned, never panicked.
type ValidationError struct {
	Issues []models.ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Field + ": " + issue.Message
	}
	return strings.Join(msgs, "; ")
}

// CreatePostRequest is the payload accepted when creating a post. A nil
// FeelingEmoji means the caller supplies the neutral default.
type CreatePostRequest struct {
	Content      string  `json:"content" validate:"min=1"`
	FeelingEmoji *string `json:"feelingEmoji" validate:"omitnil,min=1"`
}

var messages = map[string]string{
	"content":      "Post content must be at least 1 character long",
	"feelingEmoji": "Feeling emoji is required",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateContent is a literal non-empty check: "" fails, " " passes.
func ValidateContent(content string) error {
	if err := instance().Var(content, "min=1"); err != nil {
		return &ValidationError{Issues: []models.ValidationIssue{{
			Field:   "content",
			Code:    "too_small",
			Message: messages["content"],
		}}}
	}
	return nil
}

// ValidateCreatePost checks content and, when present, feelingEmoji.
func ValidateCreatePost(req CreatePostRequest) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Issues = append(out.Issues, models.ValidationIssue{
			Field:   fe.Field(),
			Code:    "too_small",
			Message: messages[fe.Field()],
		})
	}
	return out
}

// Issues extracts field issues from err, or nil if err is not a ValidationError.
func Issues(err error) []models.ValidationIssue {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}
