package wish

import (
	"errors"
	"time"

	"github.com/samber/lo"
)

// DefaultTitle is the label every wish carries; visitors never choose it.
const DefaultTitle = "Lời Tri Ân"

// DateLayout renders dates the way vi-VN short dates look (day/month/year, no padding).
const DateLayout = "2/1/2006"

var (
	ErrNotFound     = errors.New("wish not found")
	ErrInvalidInput = errors.New("author and content are required")
	ErrPersist      = errors.New("wishes could not be saved")
)

// Wish is a single tribute message. The id and date are assigned by the server
// and a wish is never modified after creation.
type Wish struct {
	ID      int    `json:"id" bson:"id"`
	Title   string `json:"title" bson:"title"`
	Author  string `json:"author" bson:"author"`
	Content string `json:"content" bson:"content"`
	Date    string `json:"date" bson:"date"`
}

// FormatDate formats t in loc using DateLayout.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// NextID returns max(ids)+1, or 1 for an empty collection.
func NextID(wishes []Wish) int {
	if len(wishes) == 0 {
		return 1
	}
	return lo.Max(lo.Map(wishes, func(w Wish, _ int) int { return w.ID })) + 1
}

// Clone returns an independent copy, never nil.
func Clone(wishes []Wish) []Wish {
	out := make([]Wish, len(wishes))
	copy(out, wishes)
	return out
}
