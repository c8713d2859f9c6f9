// Package store implements the row store ports on top of gorm
package store

import (
	"fmt"
	"strings"

	"github.com/jvincentbasto/my-space/internal/query"
	"github.com/jvincentbasto/my-space/internal/service"
	"gorm.io/gorm"
)

// columns maps public field names to columns
var columns = map[string]string{
	query.FieldID:        "id",
	query.FieldCreatedAt: "created_at",
	query.FieldUpdatedAt: "updated_at",
	query.FieldOwner:     "owner",
	query.FieldUsers:     "users",
	query.FieldType:      "type",
	query.FieldName:      "name",
	query.FieldEmail:     "email",
	query.FieldAccountID: "account_id",
	query.FieldObject:    "bucket_field",
	"size":               "size",
	"fullName":           "full_name",
}

var sortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"size":       true,
	"type":       true,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type predicate struct {
	sql  string
	args []any
}

// compiled is a directive list split into the parts gorm applies separately
type compiled struct {
	where []predicate
	order []string
	limit int
}

func (c *compiled) filter(tx *gorm.DB) *gorm.DB {
	for _, p := range c.where {
		tx = tx.Where(p.sql, p.args...)
	}

	return tx
}

func (c *compiled) page(tx *gorm.DB) *gorm.DB {
	for _, o := range c.order {
		tx = tx.Order(o)
	}

	if c.limit > 0 {
		tx = tx.Limit(c.limit)
	}

	return tx
}

func compile(ds []query.Directive) (*compiled, error) {
	c := &compiled{}

	for _, d := range ds {
		switch d.Kind {
		case query.KindLimit:
			c.limit = d.Limit
		case query.KindOrderAsc, query.KindOrderDesc:
			col, ok := columns[d.Field]
			if !ok || !sortable[col] {
				return nil, fmt.Errorf("%w: %q", service.ErrUnknownSortBy, d.Field)
			}

			dir := "DESC"
			if d.Kind == query.KindOrderAsc {
				dir = "ASC"
			}

			c.order = append(c.order, col+" "+dir)
		default:
			p, err := compilePredicate(d)
			if err != nil {
				return nil, err
			}

			c.where = append(c.where, p)
		}
	}

	return c, nil
}

func compilePredicate(d query.Directive) (predicate, error) {
	switch d.Kind {
	case query.KindEqual:
		col, ok := columns[d.Field]
		if !ok {
			return predicate{}, fmt.Errorf("unknown field %q", d.Field)
		}

		switch len(d.Values) {
		case 0:
			return predicate{sql: "1 = 0"}, nil
		case 1:
			return predicate{sql: col + " = ?", args: []any{d.Values[0]}}, nil
		default:
			return predicate{sql: col + " IN ?", args: []any{d.Values}}, nil
		}

	case query.KindContains:
		col, ok := columns[d.Field]
		if !ok {
			return predicate{}, fmt.Errorf("unknown field %q", d.Field)
		}

		if len(d.Values) != 1 {
			return predicate{}, fmt.Errorf("contains on %q needs exactly one value", d.Field)
		}

		v := likeEscaper.Replace(d.Values[0])

		// List columns match whole elements, text columns match substrings
		if col == "users" {
			return predicate{
				sql:  "(',' || users || ',') LIKE ? ESCAPE '\\'",
				args: []any{"%," + v + ",%"},
			}, nil
		}

		return predicate{
			sql:  "LOWER(" + col + ") LIKE ? ESCAPE '\\'",
			args: []any{"%" + strings.ToLower(v) + "%"},
		}, nil

	case query.KindOr:
		if len(d.Any) == 0 {
			return predicate{sql: "1 = 0"}, nil
		}

		parts := make([]string, 0, len(d.Any))
		var args []any

		for _, sub := range d.Any {
			p, err := compilePredicate(sub)
			if err != nil {
				return predicate{}, err
			}

			parts = append(parts, "("+p.sql+")")
			args = append(args, p.args...)
		}

		return predicate{sql: strings.Join(parts, " OR "), args: args}, nil

	default:
		return predicate{}, fmt.Errorf("directive kind %d can't be nested", d.Kind)
	}
}
