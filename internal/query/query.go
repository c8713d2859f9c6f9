// Package query builds the filter and sort directives used to list files.
// Directives are storage agnostic, the row stores translate them.
package query

import (
	"strings"

	"github.com/jvincentbasto/my-space/pkg/filetype"
)

type Kind int

const (
	KindEqual Kind = iota
	KindContains
	KindOr
	KindLimit
	KindOrderAsc
	KindOrderDesc
)

// Directive is a single predicate, limit or ordering. All predicates in a
// list are AND-ed together.
type Directive struct {
	Kind   Kind
	Field  string
	Values []string
	Limit  int
	Any    []Directive // only set for KindOr
}

const (
	FieldID        = "$id"
	FieldCreatedAt = "$createdAt"
	FieldUpdatedAt = "$updatedAt"
	FieldOwner     = "owner"
	FieldUsers     = "users"
	FieldType      = "type"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldAccountID = "accountId"
	FieldObject    = "bucketField"

	DefaultSort = FieldCreatedAt + "-desc"
)

func Equal(field string, values ...string) Directive {
	return Directive{Kind: KindEqual, Field: field, Values: values}
}

func Contains(field string, value string) Directive {
	return Directive{Kind: KindContains, Field: field, Values: []string{value}}
}

func Or(ds ...Directive) Directive {
	return Directive{Kind: KindOr, Any: ds}
}

func Limit(n int) Directive {
	return Directive{Kind: KindLimit, Limit: n}
}

func OrderAsc(field string) Directive {
	return Directive{Kind: KindOrderAsc, Field: field}
}

func OrderDesc(field string) Directive {
	return Directive{Kind: KindOrderDesc, Field: field}
}

// Request describes a file listing made by a user
type Request struct {
	UserID     string
	Email      string
	Types      []filetype.Type
	SearchText string
	Sort       string // "<field>-<asc|desc>"
	Limit      int
}

// Build turns a listing request into directives. The owner-or-shared
// predicate is always first.
func Build(r Request) []Directive {
	d := []Directive{
		Or(
			Equal(FieldOwner, r.UserID),
			Contains(FieldUsers, r.Email),
		),
	}

	if len(r.Types) > 0 {
		types := make([]string, len(r.Types))
		for i, t := range r.Types {
			types[i] = string(t)
		}

		d = append(d, Equal(FieldType, types...))
	}

	if r.SearchText != "" {
		d = append(d, Contains(FieldName, r.SearchText))
	}

	if r.Limit > 0 {
		d = append(d, Limit(r.Limit))
	}

	sort := r.Sort
	if sort == "" {
		sort = DefaultSort
	}

	return append(d, ParseSort(sort))
}

// ParseSort splits "<field>-<order>" on the last dash. Anything but "asc"
// sorts descending.
func ParseSort(sort string) Directive {
	field, order := sort, ""
	if i := strings.LastIndex(sort, "-"); i >= 0 {
		field, order = sort[:i], sort[i+1:]
	}

	if order == "asc" {
		return OrderAsc(field)
	}

	return OrderDesc(field)
}
