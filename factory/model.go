package factory

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/util"
)

// Model is an in-memory value factories populate. AssignAttributes must
// set every given attribute, including fields the model does not
// otherwise expose for writing.
type Model interface {
	AssignAttributes(attrs map[string]any) error
}

// ModelPtr constrains RegisterModel to pointer types implementing Model.
type ModelPtr[T any] interface {
	*T
	Model
}

// ModelRegistry maps class names to constructors of blank models.
type ModelRegistry struct {
	mu       sync.RWMutex
	ctors    map[string]func() Model
	fallback func(className string) Model
}

// NewModelRegistry creates an empty registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{ctors: make(map[string]func() Model)}
}

// Register binds className to a constructor. Registering a class again
// replaces the previous constructor.
func (r *ModelRegistry) Register(className string, ctor func() Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[className] = ctor
}

// SetFallback sets the constructor used for class names with no
// registration. Without one, unregistered classes fail with MAPPING_ERROR.
func (r *ModelRegistry) SetFallback(fn func(className string) Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// RegisterModel registers *T under className.
//
//	factory.RegisterModel[User](models, "User")
func RegisterModel[T any, PT ModelPtr[T]](r *ModelRegistry, className string) {
	r.Register(className, func() Model { return PT(new(T)) })
}

// New returns a blank model for className.
func (r *ModelRegistry) New(className string) (Model, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[className]
	fallback := r.fallback
	r.mu.RUnlock()

	switch {
	case ok:
		return ctor(), nil
	case fallback != nil:
		return fallback(className), nil
	default:
		return nil, apperrors.Mapping(className, fmt.Errorf("no model registered for class %q", className))
	}
}

// Has reports whether className has a registered constructor.
func (r *ModelRegistry) Has(className string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[className]
	return ok
}

// Names returns the registered class names in sorted order.
func (r *ModelRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return util.SortedKeys(r.ctors)
}

// AssignFields decodes attrs onto the struct target points to. Attribute
// names match field names ignoring case and underscores, so "created_at"
// sets CreatedAt. Embedded structs such as gorm.Model are flattened.
// An attribute with no matching field is an error.
//
// Models typically implement AssignAttributes with it:
//
//	func (u *User) AssignAttributes(attrs map[string]any) error {
//		return factory.AssignFields(u, attrs)
//	}
func AssignFields(target any, attrs map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Squash:           true,
		MatchName:        matchFieldName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return apperrors.Mapping(typeName(target), err)
	}
	if err := dec.Decode(attrs); err != nil {
		return apperrors.Mapping(typeName(target), err)
	}
	return nil
}

func matchFieldName(mapKey, fieldName string) bool {
	return foldName(mapKey) == foldName(fieldName)
}

func foldName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

// Record is a map-backed model for classes with no Go type, such as rows
// built from the command line. Its table name derives from the class name.
type Record struct {
	class  string
	Values Attributes
}

// NewRecord creates an empty record of className.
func NewRecord(className string) *Record {
	return &Record{class: className, Values: Attributes{}}
}

// ModelName returns the record's class name.
func (r *Record) ModelName() string { return r.class }

// AssignAttributes copies attrs into the record.
func (r *Record) AssignAttributes(attrs map[string]any) error {
	if r.Values == nil {
		r.Values = Attributes{}
	}
	maps.Copy(r.Values, attrs)
	return nil
}

// Get returns the value of one attribute.
func (r *Record) Get(name string) any { return r.Values[name] }
