package drafts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrNotFound = errors.New("draft not found")

// ErrValidation matches any Errors value through errors.Is.
var ErrValidation = errors.New("draft: invalid")

const (
	StepBasics  = 1
	StepDetails = 2
	StepPricing = 3
	StepReview  = 4

	MinTitle       = 10
	MaxTitle       = 100
	MinDescription = 50
	MaxDescription = 2000
	MaxRegion      = 50
	MaxImages      = 10
	MaxPriceCents  = 10_000_000
)

// Draft is a listing being written through the four step wizard.
type Draft struct {
	Seller       string    `json:"seller"`
	Step         int       `json:"step"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Game         string    `json:"game"`
	Platform     string    `json:"platform"`
	PriceCents   int64     `json:"price_cents"`
	Images       []string  `json:"images"`
	AccountLevel int       `json:"account_level"`
	Rank         string    `json:"rank"`
	Region       string    `json:"region"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Errors maps a field name to a human readable problem.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "draft invalid: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool { return target == ErrValidation }

// Err returns nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Validate checks every field required for submission.
func Validate(d Draft) Errors {
	return ValidateStep(d, StepReview)
}

// ValidateStep checks the fields owned by one wizard step. The review step checks all of them.
func ValidateStep(d Draft, step int) Errors {
	errs := Errors{}
	switch step {
	case StepBasics:
		basics(d, errs)
	case StepDetails:
		details(d, errs)
	case StepPricing:
		pricing(d, errs)
	case StepReview:
		basics(d, errs)
		details(d, errs)
		pricing(d, errs)
	default:
		errs["step"] = fmt.Sprintf("step must be between %d and %d", StepBasics, StepReview)
	}
	return errs
}

func basics(d Draft, errs Errors) {
	title := strings.TrimSpace(d.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs["title"] = "title is required"
	case n < MinTitle:
		errs["title"] = fmt.Sprintf("title must be at least %d characters", MinTitle)
	case n > MaxTitle:
		errs["title"] = fmt.Sprintf("title must be at most %d characters", MaxTitle)
	}
	if strings.TrimSpace(d.Game) == "" {
		errs["game"] = "game is required"
	}
	if strings.TrimSpace(d.Platform) == "" {
		errs["platform"] = "platform is required"
	}
}

func details(d Draft, errs Errors) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(d.Description)); {
	case n == 0:
		errs["description"] = "description is required"
	case n < MinDescription:
		errs["description"] = fmt.Sprintf("description must be at least %d characters", MinDescription)
	case n > MaxDescription:
		errs["description"] = fmt.Sprintf("description must be at most %d characters", MaxDescription)
	}
	if d.AccountLevel < 0 {
		errs["account_level"] = "account level cannot be negative"
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Region)) > MaxRegion {
		errs["region"] = fmt.Sprintf("region must be at most %d characters", MaxRegion)
	}
}

func pricing(d Draft, errs Errors) {
	switch {
	case d.PriceCents <= 0:
		errs["price"] = "price must be greater than zero"
	case d.PriceCents > MaxPriceCents:
		errs["price"] = "price must not exceed 100000.00"
	}
	switch n := len(d.Images); {
	case n == 0:
		errs["images"] = "at least one image is required"
	case n > MaxImages:
		errs["images"] = fmt.Sprintf("at most %d images are allowed", MaxImages)
	default:
		for _, img := range d.Images {
			if strings.TrimSpace(img) == "" {
				errs["images"] = "image urls must not be empty"
				break
			}
		}
	}
}
