// Package idset операции над списками идентификаторов из запросов.
package idset

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Unique убирает повторы, сохраняя порядок первого появления.
func Unique(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	return lo.Uniq(ids)
}

// Missing возвращает идентификаторы из want, которых нет в have.
func Missing(want, have []int64) []int64 {
	missing := lo.Without(lo.Uniq(want), have...)
	if len(missing) == 0 {
		return nil
	}
	return missing
}

// Format печатает список как [1, 2, 3].
func Format(ids []int64) string {
	parts := lo.Map(ids, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	})
	return "[" + strings.Join(parts, ", ") + "]"
}
