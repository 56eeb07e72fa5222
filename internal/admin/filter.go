package admin

// Statused is implemented by every record that carries a status enum.
type Statused[S ~string] interface {
	StatusValue() S
}

// FilterByStatus keeps items whose status equals status. Empty status keeps everything.
func FilterByStatus[T Statused[S], S ~string](items []T, status S) []T {
	if status == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.StatusValue() == status {
			out = append(out, it)
		}
	}
	return out
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*perPage well inside int32 for SQL offsets.
	MaxPage = 1_000_000
)

type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Paginate slices items into a 1-based page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	start := total
	if page-1 <= total/perPage {
		start = min((page-1)*perPage, total)
	}
	end := start + perPage
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Page: page, PerPage: perPage, Total: total}
}
