package repository

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains шаблон ILIKE для поиска подстроки.
func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// orderDirection возвращает SQL-направление сортировки, по умолчанию ASC.
func orderDirection(sort string) string {
	if strings.EqualFold(sort, models.SortDesc) {
		return "DESC"
	}
	return "ASC"
}

// whereBuilder собирает условия WHERE с позиционными параметрами.
type whereBuilder struct {
	conds []string
	args  []any
}

// add добавляет условие; каждый %d в cond заменяется номером параметра v.
func (b *whereBuilder) add(cond string, v any) {
	b.args = append(b.args, v)
	n := len(b.args)
	b.conds = append(b.conds, strings.ReplaceAll(cond, "%d", fmt.Sprint(n)))
}

func (b *whereBuilder) String() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}
