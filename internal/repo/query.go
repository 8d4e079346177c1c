package repo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gympulse/internal/store"
)

const (
	DefaultPageSize = 10
	MinPageSize     = 5
	MaxPageSize     = 50
)

// Page is a 1-based page with a bounded size.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes raw query values: page >= 1, size in [5,50],
// zero or negative size means the default.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size < MinPageSize:
		size = MinPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// offset is only safe once Number is known to be within the page count.
func (p Page) offset() int { return (p.Number - 1) * p.Size }

// Sort is a requested ordering. Keys outside an entity's allow-list fall
// back to created_at descending.
type Sort struct {
	Key string
	Asc bool
}

func NewSort(key, dir string) Sort {
	return Sort{Key: strings.TrimSpace(key), Asc: strings.EqualFold(strings.TrimSpace(dir), "asc")}
}

func (s Sort) orderBy(allowed map[string]bool) clause.OrderBy {
	col, desc := s.Key, !s.Asc
	if !allowed[col] {
		col, desc = "created_at", true
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: col}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

type ListResult[T any] struct {
	Rows      []T   `json:"rows"`
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
}

func emptyResult[T any](p Page) ListResult[T] {
	return ListResult[T]{Rows: []T{}, Page: p.Number, PageSize: p.Size, PageCount: 1}
}

func pageCount(total int64, size int) int {
	n := int((total + int64(size) - 1) / int64(size))
	return max(1, n)
}

// list counts the filtered query and then fetches one ordered page of it.
// A page past the end yields no rows and the full total.
func list[T any](q *gorm.DB, s Sort, allowed map[string]bool, p Page, preload ...func(*gorm.DB) *gorm.DB) (ListResult[T], error) {
	res := ListResult[T]{Rows: []T{}, Page: p.Number, PageSize: p.Size}

	var zero T
	if err := q.Session(&gorm.Session{}).Model(&zero).Count(&res.Total).Error; err != nil {
		return res, store.Failure(err)
	}
	res.PageCount = pageCount(res.Total, p.Size)
	if int64(p.Number-1) >= (res.Total+int64(p.Size)-1)/int64(p.Size) {
		return res, nil
	}

	fq := q.Session(&gorm.Session{}).Clauses(s.orderBy(allowed)).Offset(p.offset()).Limit(p.Size)
	for _, fn := range preload {
		fq = fn(fq)
	}
	if err := fq.Find(&res.Rows).Error; err != nil {
		return res, store.Failure(err)
	}
	return res, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search adds a case-insensitive substring match of term over cols.
func search(q *gorm.DB, term string, cols ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}
