package content

import "strings"

// Sortable fields understood by the store. FieldPostIn means "keep the
// order of the explicit ID list" and is applied after the query.
const (
	FieldMenuOrder = "menu_order"
	FieldID        = "ID"
	FieldTitle     = "title"
	FieldDate      = "date"
	FieldName      = "name"
	FieldModified  = "modified"
	FieldRand      = "rand"
	FieldPostIn    = "post__in"
)

var knownFields = map[string]string{
	"menu_order":    FieldMenuOrder,
	"id":            FieldID,
	"title":         FieldTitle,
	"post_title":    FieldTitle,
	"date":          FieldDate,
	"post_date":     FieldDate,
	"name":          FieldName,
	"post_name":     FieldName,
	"modified":      FieldModified,
	"post_modified": FieldModified,
	"rand":          FieldRand,
	"post__in":      FieldPostIn,
}

// DefaultOrderBy is the sort expression used when none is given.
const DefaultOrderBy = "menu_order ID"

// Order is a parsed sort expression.
type Order struct {
	Fields []string
	Desc   bool
}

// ParseOrder turns a space separated sort expression into an Order.
// Unknown fields are dropped; if nothing survives the default
// expression is used. direction is "ASC" or "DESC", case-insensitive.
func ParseOrder(expr, direction string) Order {
	o := Order{Desc: strings.EqualFold(strings.TrimSpace(direction), "DESC")}
	for _, f := range strings.Fields(strings.ReplaceAll(expr, ",", " ")) {
		if canonical, ok := knownFields[strings.ToLower(f)]; ok {
			o.Fields = append(o.Fields, canonical)
		}
	}
	if len(o.Fields) == 0 {
		o.Fields = []string{FieldMenuOrder, FieldID}
	}
	return o
}

// Explicit reports whether the order follows an explicit ID list.
func (o Order) Explicit() bool {
	return len(o.Fields) > 0 && o.Fields[0] == FieldPostIn
}
