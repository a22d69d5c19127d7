package postgres

import (
	"fmt"
	"strings"

	"github.com/ErlanBelekov/taskboard/internal/taskquery"
)

type listStatement struct {
	List      string
	ListArgs  []any
	Count     string
	CountArgs []any
}

// buildTaskList renders q as a page query and a count query sharing one
// predicate. The count ignores pagination but keeps the search predicate.
func buildTaskList(q taskquery.Query) listStatement {
	args := []any{q.OwnerID}
	where := []string{"user_id = $1"}

	if q.Status != "" {
		args = append(args, string(q.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	var tsQuery string
	if q.Search != "" {
		args = append(args, q.Search)
		tsQuery = fmt.Sprintf("websearch_to_tsquery('english', $%d)", len(args))
		where = append(where, "search_vector @@ "+tsQuery)
	}

	// id is the final tie-breaker so repeated queries page identically.
	var orderBy string
	switch q.Sort {
	case taskquery.SortRelevance:
		orderBy = fmt.Sprintf("ts_rank(search_vector, %s) DESC, created_at DESC, id DESC", tsQuery)
	case taskquery.SortOldest:
		orderBy = "created_at ASC, id ASC"
	case taskquery.SortDueDate:
		orderBy = "due_date ASC NULLS LAST, created_at DESC, id DESC"
	default:
		orderBy = "created_at DESC, id DESC"
	}

	predicate := strings.Join(where, " AND ")
	countArgs := append([]any(nil), args...)

	listArgs := append(args, q.Limit, q.Offset())
	list := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		taskColumns, predicate, orderBy, len(listArgs)-1, len(listArgs))

	return listStatement{
		List:      list,
		ListArgs:  listArgs,
		Count:     "SELECT COUNT(*) FROM tasks WHERE " + predicate,
		CountArgs: countArgs,
	}
}
