package reviews

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const anonymous = "Anonymous"

var (
	nameKeys = []string{"reviewer", "username", "author", "name"}
	textKeys = []string{"comment", "content", "text"}
	dateKeys = []string{"created_at", "createdAt", "date"}
)

// ToTestimonial maps a loosely shaped review record onto a Testimonial.
// Unknown or malformed fields fall back to defaults instead of failing.
func ToTestimonial(rec map[string]any) Testimonial {
	t := Testimonial{Name: anonymous, Rating: 5}
	if v := firstString(rec, nameKeys); v != "" {
		t.Name = v
	}
	t.Text = firstString(rec, textKeys)
	if r, ok := number(rec["rating"]); ok {
		t.Rating = clampRating(int(math.Round(r)))
	}
	for _, k := range dateKeys {
		if s, ok := rec[k].(string); ok {
			if d, err := time.Parse(time.RFC3339, s); err == nil {
				t.Date = d
				break
			}
		}
	}
	return t
}

func firstString(rec map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			// nested user objects, {"author": {"username": "..."}}
			if s := firstString(v, []string{"username", "name"}); s != "" {
				return s
			}
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && finite(f)
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clampRating(r int) int {
	return max(1, min(5, r))
}

func fromReview(r Review) Testimonial {
	name := r.Reviewer
	if name == "" {
		name = anonymous
	}
	return Testimonial{Name: name, Text: r.Comment, Rating: clampRating(r.Rating), Date: r.CreatedAt}
}
