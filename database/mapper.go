package database

import (
	"reflect"
	"sync"

	"gorm.io/gorm/schema"

	apperrors "github.com/kbukum/factorygirl/errors"
)

// Named is implemented by models that are not GORM structs but still map
// to a table, such as map-backed records. The table name is derived from
// ModelName with the mapper's naming strategy.
type Named interface {
	ModelName() string
}

// Mapper resolves model values to table names using GORM's schema parser,
// so TableName methods and naming strategies apply as they do for queries.
type Mapper struct {
	namer schema.Namer
	cache sync.Map
}

// NewMapper creates a mapper. A nil namer uses GORM's default strategy.
func NewMapper(namer schema.Namer) *Mapper {
	if namer == nil {
		namer = schema.NamingStrategy{}
	}
	return &Mapper{namer: namer}
}

// TableName returns the table model is stored in. It fails with
// MAPPING_ERROR when model is not a persistable type.
func (m *Mapper) TableName(model any) (string, error) {
	if n, ok := model.(Named); ok {
		return m.namer.TableName(n.ModelName()), nil
	}
	if t, ok := model.(schema.Tabler); ok {
		return t.TableName(), nil
	}

	s, err := schema.Parse(model, &m.cache, m.namer)
	if err != nil {
		return "", apperrors.Mapping(typeName(model), err)
	}
	return s.Table, nil
}

func typeName(model any) string {
	if model == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
