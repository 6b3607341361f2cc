package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5

	DefaultPage     = 1
	DefaultPageSize = 10
)

type Review struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput carries the caller-supplied fields of a new review.
// ID and CreatedAt are assigned by the store.
type ReviewInput struct {
	Title   string
	Content string
	Rating  int
	Author  string
}

// ReviewPatch is a partial update. A nil field leaves the stored value untouched.
type ReviewPatch struct {
	Title   *string
	Content *string
	Rating  *int
	Author  *string
}

func (p ReviewPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Rating == nil && p.Author == nil
}

// Apply merges the present fields of p into r and returns the result.
func (p ReviewPatch) Apply(r Review) Review {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Author != nil {
		r.Author = *p.Author
	}
	return r
}

// ValidRating reports whether v lies in [MinRating, MaxRating].
func ValidRating(v int) bool { return v >= MinRating && v <= MaxRating }
