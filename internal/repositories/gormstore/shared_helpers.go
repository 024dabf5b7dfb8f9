package gormstore

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

const materialViewColumns = "m.id, m.title, m.description, m.content, m.category_id, m.duration, " +
	"m.created_by, m.created_at, m.updated_at, " +
	"c.name AS category_name, c.color AS category_color, u.username AS author"

// likeMatch is a case-insensitive literal LIKE on one column.
func likeMatch(column string) string {
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(?) ESCAPE '%s'", column, repositories.LikeEscapeChar)
}

// materialViewQuery selects materials enriched with category and author. Both
// joins are LEFT so missing parents null the enrichment instead of dropping rows.
func materialViewQuery(db *gorm.DB) *gorm.DB {
	return db.Table("materials AS m").
		Select(materialViewColumns).
		Joins("LEFT JOIN categories c ON m.category_id = c.id").
		Joins("LEFT JOIN users u ON m.created_by = u.id")
}

// newestFirst is the listing order; id breaks created_at ties.
func newestFirst() clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: "m", Name: "created_at"}, Desc: true},
		{Column: clause.Column{Table: "m", Name: "id"}, Desc: true},
	}}
}

// searchWhere matches pattern against title, description, content and category name.
func searchWhere(pattern string) clause.Expr {
	sql := likeMatch("m.title") + " OR " +
		likeMatch("m.description") + " OR " +
		likeMatch("m.content") + " OR " +
		likeMatch("c.name")

	return clause.Expr{SQL: sql, Vars: []interface{}{pattern, pattern, pattern, pattern}}
}

// searchRank orders title hits first, description hits second, everything else
// last, newest first inside each tier. It is a single expression because gorm
// drops columns when OrderBy clauses with expressions are merged.
func searchRank(pattern string) clause.OrderBy {
	sql := "CASE WHEN " + likeMatch("m.title") + " THEN 1 WHEN " + likeMatch("m.description") +
		" THEN 2 ELSE 3 END, m.created_at DESC, m.id DESC"

	return clause.OrderBy{Expression: clause.Expr{
		SQL:                sql,
		Vars:               []interface{}{pattern, pattern},
		WithoutParentheses: true,
	}}
}

// handleDBError wraps a database error with the failing operation
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
