package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"articledash/internal/model"

	"github.com/goccy/go-json"
)

var (
	// ErrUnexpectedShape is returned when a successful response carries a
	// payload of the wrong kind for the operation.
	ErrUnexpectedShape = errors.New("unexpected response shape")
	// ErrMalformed wraps bodies that are not valid JSON envelopes.
	ErrMalformed = errors.New("malformed response")
)

// Kind tells which payload a successful response carried.
type Kind int

const (
	KindEmpty Kind = iota
	KindList
	KindSingle
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindSingle:
		return "single"
	default:
		return "empty"
	}
}

// Result is a decoded successful response.
type Result struct {
	Kind     Kind
	Articles []model.Article
	PageInfo model.PageInfo
	Article  *model.Article
	Message  string
}

// Error is an application-level failure: the API answered with
// meta.success = false.
type Error struct {
	Status  int
	Message string
	Fields  model.FieldErrors
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("article api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("article api: request failed (status %d)", e.Status)
}

type envelope struct {
	Meta struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	} `json:"meta"`
	Data   json.RawMessage            `json:"data"`
	Errors map[string]json.RawMessage `json:"errors"`
}

type listPayload struct {
	Articles []model.Article `json:"articles"`
	PageInfo model.PageInfo  `json:"page_info"`
}

// decode turns a response body into a Result or an *Error. Any other error
// means the body could not be understood.
func decode(status int, body []byte) (*Result, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !env.Meta.Success {
		return nil, &Error{
			Status:  status,
			Message: env.Meta.Message,
			Fields:  decodeFieldErrors(env.Errors),
		}
	}

	res := &Result{Message: env.Meta.Message}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		res.Kind = KindEmpty
		return res, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: data is not an object", ErrUnexpectedShape)
	}

	if _, ok := probe["articles"]; ok {
		var list listPayload
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		res.Kind = KindList
		res.Articles = list.Articles
		res.PageInfo = list.PageInfo
		return res, nil
	}

	// Any other object is the article itself.
	var a model.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	res.Kind = KindSingle
	res.Article = &a
	return res, nil
}

// decodeFieldErrors accepts both {"title": "msg"} and {"title": ["msg", ...]}.
func decodeFieldErrors(raw map[string]json.RawMessage) model.FieldErrors {
	if len(raw) == 0 {
		return nil
	}
	out := model.FieldErrors{}
	for field, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				out[field] = s
			}
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
			out[field] = strings.TrimSpace(list[0])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
