package sqlitestore

import (
	"database/sql/driver"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"

	"automator/internal/docstore"
)

// foldFunc lowercases full Unicode text. SQLite's own lower() only folds ASCII.
const foldFunc = "docstore_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// compile turns a docstore filter into a squirrel predicate. A nil Sqlizer means
// "match everything".
func compile(f docstore.Filter) (sq.Sqlizer, error) {
	if len(f) == 0 {
		return nil, nil
	}
	and := make(sq.And, 0, len(f))
	for _, c := range f {
		p, err := compileCond(c)
		if err != nil {
			return nil, err
		}
		and = append(and, p)
	}
	return and, nil
}

func compileCond(c docstore.Cond) (sq.Sqlizer, error) {
	expr, err := fieldExpr(c.Field)
	if err != nil {
		return nil, err
	}

	switch c.Op {
	case docstore.OpEq:
		v, err := sqlValue(c.Value)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return sq.Expr(expr + " IS NULL"), nil
		}
		return sq.Expr(expr+" = ?", v), nil

	case docstore.OpNe:
		v, err := sqlValue(c.Value)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return sq.Expr(expr + " IS NOT NULL"), nil
		}
		return sq.Expr("("+expr+" IS NULL OR "+expr+" <> ?)", v), nil

	case docstore.OpIn:
		values, ok := c.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("in condition on %s needs []string", c.Field)
		}
		return sq.Eq{expr: values}, nil

	case docstore.OpHas:
		v, err := sqlValue(c.Value)
		if err != nil {
			return nil, err
		}
		return sq.Expr(fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(doc, '$.%s') WHERE json_each.value = ?)", c.Field), v), nil

	case docstore.OpContainsFold:
		term, _ := c.Value.(string)
		return sq.Expr("instr("+foldFunc+"("+expr+"), "+foldFunc+"(?)) > 0", term), nil

	case docstore.OpMinLen:
		n, _ := c.Value.(int)
		return sq.Expr(fmt.Sprintf("json_array_length(doc, '$.%s') >= ?", c.Field), n), nil
	}
	return nil, fmt.Errorf("unknown operator %d", c.Op)
}

// fieldExpr returns the SQL expression reading a top-level document field.
func fieldExpr(field string) (string, error) {
	if field == docstore.IDField {
		return "id", nil
	}
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("invalid field name: %q", field)
	}
	return fmt.Sprintf("json_extract(doc, '$.%s')", field), nil
}

// sqlValue converts a filter value to what json_extract yields for it.
// JSON booleans come back from SQLite as integers.
func sqlValue(v any) (any, error) {
	cv, err := docstore.Canonical(v)
	if err != nil {
		return nil, err
	}
	switch x := cv.(type) {
	case nil, string, float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return nil, fmt.Errorf("unsupported filter value %T", v)
}
