package postgres

import (
	"fmt"
	"strings"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/pkg/i18n"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argID      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argID: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argID))
	qb.args = append(qb.args, arg)
	qb.argID++
}

// addText compares a free-text code through its stored folded key column,
// folded the same way as domain.ListingFilter.Matches.
func (qb *queryBuilder) addText(keyColumn string, value *string) {
	if value != nil {
		qb.addCondition("%s = $%d", keyColumn, i18n.Fold(*value))
	}
}

func (qb *queryBuilder) addFloatRange(fieldName string, min, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) addRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

// nextArg registers an argument without a condition and returns its placeholder
func (qb *queryBuilder) nextArg(arg interface{}) string {
	ph := fmt.Sprintf("$%d", qb.argID)
	qb.args = append(qb.args, arg)
	qb.argID++
	return ph
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// applyFilters translates the shared filter struct into SQL conditions; it is
// the only place listing filters are expressed in SQL.
func applyFilters(q domain.ListingQuery) *queryBuilder {
	qb := newQueryBuilder()
	f := q.Filter

	if q.ActiveOnly {
		qb.addRaw("is_active = TRUE")
	}
	qb.addText("city_key", f.City)
	qb.addText("district_key", f.District)
	qb.addText("type_key", f.Type)
	qb.addFloatRange("price", f.MinPrice, f.MaxPrice)
	if f.Rooms != nil {
		qb.addCondition("%s = $%d", "rooms", *f.Rooms)
	}

	return qb
}

func orderClause(o domain.SortOrder) string {
	switch o {
	case domain.SortOldest:
		return "ORDER BY id ASC"
	case domain.SortPriceAsc:
		return "ORDER BY price ASC, id DESC"
	case domain.SortPriceDesc:
		return "ORDER BY price DESC, id DESC"
	default:
		return "ORDER BY id DESC"
	}
}
