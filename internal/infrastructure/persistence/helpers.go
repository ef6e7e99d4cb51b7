package persistence

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mapNotFound converts gorm.ErrRecordNotFound into the given domain sentinel
func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// containsPattern builds a lower-case LIKE pattern with wildcards escaped
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// prefixPattern builds a lower-case LIKE prefix pattern with wildcards escaped
func prefixPattern(s string) string {
	return escapeLike(strings.ToLower(strings.TrimSpace(s))) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// paginate applies ordering and the page window of filter. orderBy is
// validated against allowed before it reaches SQL.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	filter = filter.Normalize()
	orderBy := ValidateSortField(filter.OrderBy, allowed, defaultOrder)
	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: orderBy},
		Desc:   ValidateSortOrder(filter.OrderDir) == "DESC",
	})
	if orderBy != "id" {
		query = query.Order("id")
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// saveVersioned updates the row of model when the stored version is older than
// version, and inserts it when no row exists. A newer or equal stored version
// means another writer got there first. Columns in omit are left untouched on update.
func saveVersioned(tx *gorm.DB, model any, id uuid.UUID, version int, omit ...string) error {
	result := tx.Model(model).
		Omit(append([]string{clause.Associations}, omit...)...).
		Where("version < ?", version).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return tx.Omit(clause.Associations).Create(model).Error
}

func filterString(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		s = rv.String()
	} else if st, isStringer := v.(fmt.Stringer); isStringer {
		s = st.String()
	}
	return s, s != ""
}

func filterUUID(filter shared.Filter, key string) (uuid.UUID, bool) {
	switch v := filter.Filters[key].(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case *uuid.UUID:
		if v != nil {
			return *v, *v != uuid.Nil
		}
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	}
	return uuid.Nil, false
}

func filterBool(filter shared.Filter, key string) (bool, bool) {
	b, ok := filter.Filters[key].(bool)
	return b, ok
}
