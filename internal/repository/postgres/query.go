package postgres

import (
	"fmt"
	"strings"

	"github.com/flexprice/notebilling/internal/types"
)

// whereClause accumulates AND-ed conditions written with ? placeholders.
// The final query goes through Rebind to get postgres $n placeholders.
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate appends ORDER BY / LIMIT / OFFSET. sort is checked against allowed columns.
func paginate(query string, filter types.BaseFilter, allowedSort map[string]string, defaultSort string) string {
	col, ok := allowedSort[filter.GetSort()]
	if !ok {
		col = defaultSort
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", col, order, order)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}
	return query
}
