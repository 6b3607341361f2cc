package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

// FieldError is one violation reported back to the client.
type FieldError struct {
	Field    string `json:"field"`
	Location string `json:"location"` // body|query|params
	Message  string `json:"message"`
}

type validationErrors []FieldError

// add keeps the first violation per field.
func (v *validationErrors) add(fe FieldError) {
	for _, e := range *v {
		if e.Field == fe.Field && e.Location == fe.Location {
			return
		}
	}
	*v = append(*v, fe)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json/query names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

const invalidValue = "Invalid value"

// ---- request payloads ----

type createReviewRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Rating  *int   `json:"rating" validate:"required,min=1,max=5"`
	Author  string `json:"author" validate:"required"`
}

var createMessages = map[string]string{
	"title":   "Title is required",
	"content": "Content is required",
	"rating":  "Rating must be between 1 and 5",
	"author":  "Author is required",
}

func (r createReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{Title: r.Title, Content: r.Content, Rating: *r.Rating, Author: r.Author}
}

// updateReviewRequest fields are pointers so an absent field stays nil.
// JSON null is treated as absent.
type updateReviewRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1"`
	Content *string `json:"content" validate:"omitnil,min=1"`
	Rating  *int    `json:"rating" validate:"omitnil,min=1,max=5"`
	Author  *string `json:"author"`
}

var updateMessages = map[string]string{
	"title":   "Title cannot be empty",
	"content": "Content cannot be empty",
	"rating":  "Rating must be between 1 and 5",
	"author":  invalidValue,
}

func (r updateReviewRequest) patch() domain.ReviewPatch {
	return domain.ReviewPatch{Title: r.Title, Content: r.Content, Rating: r.Rating, Author: r.Author}
}

type listReviewsQuery struct {
	Page     *int   `query:"page" validate:"omitnil,min=1"`
	PageSize *int   `query:"page_size" validate:"omitnil,min=1"`
	Rating   *int   `query:"rating" validate:"omitnil,min=1,max=5"`
	Search   string `query:"search"`
	Author   string `query:"author"`
}

// filter maps the query onto a store filter. Empty search/author impose no constraint.
func (q listReviewsQuery) filter() domain.ReviewFilter {
	f := domain.ReviewFilter{Page: domain.DefaultPage, PageSize: domain.DefaultPageSize, Rating: q.Rating}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.PageSize != nil {
		f.PageSize = *q.PageSize
	}
	if q.Search != "" {
		s := q.Search
		f.Search = &s
	}
	if q.Author != "" {
		a := q.Author
		f.Author = &a
	}
	return f
}

// ---- binding ----

// bindJSON decodes the request body into dst and validates it. A value of the
// wrong JSON type is reported against its field rather than failing the body.
func bindJSON(r *http.Request, dst any, messages map[string]string) validationErrors {
	var errs validationErrors

	err := json.NewDecoder(r.Body).Decode(dst)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil, errors.Is(err, io.EOF):
	case errors.As(err, &typeErr) && typeErr.Field != "":
		field := strings.SplitN(typeErr.Field, ".", 2)[0]
		errs.add(FieldError{Field: field, Location: "body", Message: messageFor(messages, field)})
	default:
		errs.add(FieldError{Field: "body", Location: "body", Message: "Invalid JSON body"})
		return errs
	}

	for _, fe := range structErrors(dst, "body", messages) {
		errs.add(fe)
	}
	return errs
}

func bindListQuery(v url.Values) (listReviewsQuery, validationErrors) {
	var (
		q    listReviewsQuery
		errs validationErrors
	)
	q.Page = queryInt(v, "page", &errs)
	q.PageSize = queryInt(v, "page_size", &errs)
	q.Rating = queryInt(v, "rating", &errs)
	q.Search = v.Get("search")
	q.Author = v.Get("author")

	for _, fe := range structErrors(&q, "query", nil) {
		errs.add(fe)
	}
	return q, errs
}

// queryInt parses an optional integer parameter. Present but unparsable
// (including empty) is a violation.
func queryInt(v url.Values, name string, errs *validationErrors) *int {
	vals, ok := v[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
	if err != nil {
		errs.add(FieldError{Field: name, Location: "query", Message: invalidValue})
		return nil
	}
	return &n
}

func parseID(raw string) (int64, validationErrors) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validationErrors{{Field: "id", Location: "params", Message: "ID must be an integer"}}
	}
	return id, nil
}

func structErrors(v any, location string, messages map[string]string) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: location, Location: location, Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Location: location, Message: messageFor(messages, fe.Field())})
	}
	return out
}

func messageFor(messages map[string]string, field string) string {
	if m, ok := messages[field]; ok {
		return m
	}
	return invalidValue
}
