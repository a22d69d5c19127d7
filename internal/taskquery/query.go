// Package taskquery turns listing parameters (filter, text search, sort and
// pagination) into a normalized query. Parsing never fails: bad input falls
// back to defaults so the filter UI shows "no results" rather than an error.
package taskquery

import (
	"math"
	"strconv"
	"strings"

	"github.com/ErlanBelekov/taskboard/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Sort string

const (
	SortNewest    Sort = "newest" // default
	SortOldest    Sort = "oldest"
	SortDueDate   Sort = "dueDate"
	SortRelevance Sort = "relevance" // implied by a search term
)

// Params are the raw query-string values of GET /tasks.
type Params struct {
	Status string
	Search string
	Sort   string
	Page   string
	Limit  string
}

// Query is a normalized listing request. OwnerID is always set.
type Query struct {
	OwnerID string
	Status  domain.TaskStatus // empty = any status
	Search  string            // empty = no text predicate
	Sort    Sort
	Page    int
	Limit   int
}

// Build normalizes p for ownerID. The status is passed through unvalidated:
// an unknown value matches nothing.
func Build(ownerID string, p Params) Query {
	q := Query{
		OwnerID: ownerID,
		Status:  domain.TaskStatus(cleanText(p.Status)),
		Search:  cleanText(p.Search),
		Page:    positiveInt(p.Page, DefaultPage),
		Limit:   positiveInt(p.Limit, DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// Any page this far out is past the last row; clamping keeps the offset
	// representable without changing the (empty) result.
	if maxPage := math.MaxInt32/q.Limit + 1; q.Page > maxPage {
		q.Page = maxPage
	}

	// Relevance ranking wins over any requested sort.
	switch {
	case q.Search != "":
		q.Sort = SortRelevance
	case p.Sort == string(SortOldest):
		q.Sort = SortOldest
	case p.Sort == string(SortDueDate):
		q.Sort = SortDueDate
	default:
		q.Sort = SortNewest
	}
	return q
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Result is one page of a listing.
type Result struct {
	Items      []*domain.Task
	Page       int
	TotalPages int
	Total      int
}

func NewResult(q Query, items []*domain.Task, total int) Result {
	if items == nil {
		items = []*domain.Task{}
	}
	return Result{
		Items:      items,
		Page:       q.Page,
		TotalPages: TotalPages(total, q.Limit),
		Total:      total,
	}
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// cleanText trims and drops invalid UTF-8, which the store would reject.
func cleanText(raw string) string {
	return strings.TrimSpace(strings.ToValidUTF8(raw, ""))
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
