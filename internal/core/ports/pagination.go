package ports

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane bounds using def as the default size.
func (p Page) Normalize(def int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = def
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Skip is the number of documents preceding the page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}
