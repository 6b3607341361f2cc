package app

import (
	"fmt"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

// SeedRating is the rating given to the i-th seeded review (0-based).
// It cycles through 1,4,2,5,3 so every rating value is represented.
func SeedRating(i int) int {
	return (3*i)%5 + 1
}

// SeedInputs generates n sample reviews, one author per review.
func SeedInputs(n int) []domain.ReviewInput {
	out := make([]domain.ReviewInput, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.ReviewInput{
			Title:   fmt.Sprintf("Review %d", i),
			Content: fmt.Sprintf("This is a sample review %d.", i),
			Rating:  SeedRating(i),
			Author:  fmt.Sprintf("Author %d", i),
		})
	}
	return out
}
