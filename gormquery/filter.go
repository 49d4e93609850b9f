// Package gormquery applies rule trees to GORM queries by compiling them
// into clause expressions against the model's parsed schema.
package gormquery

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/queryexpr"
)

// Scope applies rule as a WHERE condition. Compilation errors attach to
// the db via AddError.
func Scope(rule queryexpr.Rule) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		fdb, err := Where(db, rule)
		if err != nil {
			db.AddError(err)
			return db
		}
		return fdb
	}
}

// Where adds rule to db as a WHERE condition. A nil or invalid rule
// leaves db unchanged.
func Where(db *gorm.DB, rule queryexpr.Rule) (*gorm.DB, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if !queryexpr.IsValid(rule) {
		return db, nil
	}

	model := cmp.Or(db.Statement.Model, db.Statement.Dest)
	if model == nil {
		return nil, errors.New("model is nil")
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse schema with db")
	}

	expr, err := buildExpr(stmt, rule)
	if err != nil {
		return nil, err
	}
	if expr != nil {
		db = db.Where(expr)
	}
	return db, nil
}

func buildExpr(stmt *gorm.Statement, rule queryexpr.Rule) (clause.Expression, error) {
	switch r := rule.(type) {
	case *queryexpr.Filter:
		return buildFilterExpr(stmt, r)
	case *queryexpr.Group:
		return buildGroupExpr(stmt, r)
	default:
		return nil, nil
	}
}

func buildGroupExpr(stmt *gorm.Statement, g *queryexpr.Group) (clause.Expression, error) {
	var exprs []clause.Expression
	for _, child := range g.Filters {
		if !queryexpr.IsValid(child) {
			continue
		}
		expr, err := buildExpr(stmt, child)
		if err != nil {
			return nil, err
		}
		if expr != nil {
			exprs = append(exprs, expr)
		}
	}

	switch len(exprs) {
	case 0:
		return nil, nil
	case 1:
		return exprs[0], nil
	default:
		if g.Logic == queryexpr.LogicOr {
			return clause.Or(exprs...), nil
		}
		return clause.And(exprs...), nil
	}
}

func buildFilterExpr(stmt *gorm.Statement, f *queryexpr.Filter) (clause.Expression, error) {
	field, ok := stmt.Schema.FieldsByName[f.Field]
	if !ok {
		return nil, errors.Errorf("missing field %q in schema", f.Field)
	}
	column := clause.Column{Table: stmt.Table, Name: field.DBName}

	switch op := f.Operator; op {
	case queryexpr.OpEqual, "":
		return clause.Eq{Column: column, Value: f.Value}, nil

	case queryexpr.OpNotEqual:
		return clause.Neq{Column: column, Value: f.Value}, nil

	case queryexpr.OpGreaterThan:
		return clause.Gt{Column: column, Value: f.Value}, nil

	case queryexpr.OpGreaterThanOrEqual:
		return clause.Gte{Column: column, Value: f.Value}, nil

	case queryexpr.OpLessThan:
		return clause.Lt{Column: column, Value: f.Value}, nil

	case queryexpr.OpLessThanOrEqual:
		return clause.Lte{Column: column, Value: f.Value}, nil

	case queryexpr.OpContains, queryexpr.OpNotContains,
		queryexpr.OpStartsWith, queryexpr.OpNotStartsWith,
		queryexpr.OpEndsWith, queryexpr.OpNotEndsWith:
		str, ok := f.Value.(string)
		if !ok {
			return nil, errors.Errorf("invalid %s value for field %q", op, f.Field)
		}
		str = strings.ToLower(str)
		var pattern string
		switch op {
		case queryexpr.OpContains, queryexpr.OpNotContains:
			pattern = "%" + str + "%"
		case queryexpr.OpStartsWith, queryexpr.OpNotStartsWith:
			pattern = str + "%"
		default:
			pattern = "%" + str
		}
		// The string-match family is case-insensitive, matching the fold
		// marker the expression builder emits.
		var expr clause.Expression = clause.Like{
			Column: clause.Expr{SQL: fmt.Sprintf("LOWER(%s)", stmt.Quote(column))},
			Value:  pattern,
		}
		switch op {
		case queryexpr.OpNotContains, queryexpr.OpNotStartsWith, queryexpr.OpNotEndsWith:
			expr = clause.Not(expr)
		}
		return expr, nil

	case queryexpr.OpIsNull:
		return clause.Eq{Column: column, Value: nil}, nil

	case queryexpr.OpIsNotNull:
		return clause.Neq{Column: column, Value: nil}, nil

	default:
		return nil, errors.Errorf("unknown operator %s for field %q", op, f.Field)
	}
}
