package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a normalised 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the page number to at least 1 and falls back to the
// default size when size is missing or above MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Limit() int { return p.Size }

// Pages is the number of pages needed to hold total items.
func (p Page) Pages(total int64) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
