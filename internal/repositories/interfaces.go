package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// CategoryAll is the listing sentinel that disables the category filter.
const CategoryAll = "all"

// LikeEscapeChar is the ESCAPE character used by every pattern built with
// EscapeLikePattern. Backslash is avoided because MySQL and PostgreSQL disagree on
// how '\' is written as a string literal.
const LikeEscapeChar = "!"

type MaterialFilters struct {
	// Category is matched exactly against the joined category name.
	// Empty or CategoryAll returns every material.
	Category string `json:"category"`
}

// HasCategory reports whether the listing should be restricted to one category.
func (f MaterialFilters) HasCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}

var likeEscaper = strings.NewReplacer(
	LikeEscapeChar, LikeEscapeChar+LikeEscapeChar,
	"%", LikeEscapeChar+"%",
	"_", LikeEscapeChar+"_",
)

// EscapeLikePattern escapes LIKE metacharacters so s only matches literally.
// Backslash needs no escaping since it is not the escape character.
func EscapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern trims q and wraps the escaped text as a substring pattern.
// The second result is false for blank input.
func ContainsPattern(q string) (string, bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", false
	}
	return "%" + EscapeLikePattern(q) + "%", true
}

// IsNotFoundError reports whether err wraps gorm's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
