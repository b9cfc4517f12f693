package controller

import (
	"errors"
	"strings"

	"articledash/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type articleForm struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
}

var fieldMessages = map[string]struct{ key, msg string }{
	"Title":   {"title", "Title is required"},
	"Content": {"content", "Content is required"},
}

// ValidateForm checks both fields after trimming surrounding whitespace and
// reports every missing one. A nil result means the form is valid.
func ValidateForm(title, content string) model.FieldErrors {
	f := articleForm{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on a programming error in articleForm.
		panic(err)
	}

	out := model.FieldErrors{}
	for _, fe := range verrs {
		if m, ok := fieldMessages[fe.Field()]; ok {
			out[m.key] = m.msg
		}
	}
	return out
}
