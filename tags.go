package neorecipe

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// entityMetadata holds the parsed `crud` tag information for a struct type.
type entityMetadata struct {
	// Label is the graph node label, the struct's name.
	Label string
	// IDField is the name of the struct field receiving the store identity.
	IDField string
	// Mappings maps struct field names to their property names.
	Mappings map[string]string
	// Required lists the property names an entity must carry to be decoded.
	Required []string
}

// metaCache avoids re-parsing tags for every decoded row.
var metaCache sync.Map

// parseTagsFromType inspects a reflect.Type and extracts persistence metadata
// from `crud` struct tags. Recognized components:
//
//	id               the field receives the store identity (string)
//	property:<name>  the field maps to the named property
//	required         a node missing the property cannot be decoded
func parseTagsFromType(typ reflect.Type) (*entityMetadata, error) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if cached, ok := metaCache.Load(typ); ok {
		return cached.(*entityMetadata), nil
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	meta := &entityMetadata{
		Label:    typ.Name(),
		Mappings: make(map[string]string),
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("crud")
		if tag == "" {
			continue
		}

		propName := ""
		required := false
		for _, part := range strings.Split(tag, ",") {
			switch {
			case part == "id":
				if field.Type.Kind() != reflect.String {
					return nil, fmt.Errorf("id field %s must be a string", field.Name)
				}
				meta.IDField = field.Name
			case part == "required":
				required = true
			case strings.HasPrefix(part, "property:"):
				propName = strings.TrimPrefix(part, "property:")
			}
		}

		if propName == "" {
			if meta.IDField == field.Name {
				continue
			}
			return nil, fmt.Errorf("field %s is missing 'property' tag component", field.Name)
		}
		meta.Mappings[field.Name] = propName
		if required {
			meta.Required = append(meta.Required, propName)
		}
	}

	if meta.IDField == "" {
		return nil, fmt.Errorf("no identity ('id') tag defined for struct %s", typ.Name())
	}

	metaCache.Store(typ, meta)
	return meta, nil
}

// parseTags is the generic convenience wrapper around parseTagsFromType.
func parseTags[T any]() (*entityMetadata, error) {
	var instance T
	return parseTagsFromType(reflect.TypeOf(instance))
}

// missingRequired returns the first required property absent from props.
func (m *entityMetadata) missingRequired(props map[string]any) (string, bool) {
	for _, name := range m.Required {
		if v, ok := props[name]; !ok || v == nil {
			return name, true
		}
	}
	return "", false
}

// decodeEntity builds a new T from a store identity and a property map. It is
// the single place where identity is stamped onto a domain value.
func decodeEntity[T any](meta *entityMetadata, id string, props map[string]any) (*T, error) {
	if name, missing := meta.missingRequired(props); missing {
		return nil, fmt.Errorf("%s %s: missing required property %q", meta.Label, id, name)
	}

	entity := new(T)
	val := reflect.ValueOf(entity).Elem()
	val.FieldByName(meta.IDField).SetString(id)

	for fieldName, propName := range meta.Mappings {
		propValue, ok := props[propName]
		if !ok || propValue == nil {
			continue
		}
		if err := setField(val.FieldByName(fieldName), propValue); err != nil {
			return nil, fmt.Errorf("%s %s: property %q: %w", meta.Label, id, propName, err)
		}
	}

	// Slices are never nil on decoded values so they serialize as [].
	for i := 0; i < val.NumField(); i++ {
		f := val.Field(i)
		if f.Kind() == reflect.Slice && f.IsNil() && f.CanSet() {
			f.Set(reflect.MakeSlice(f.Type(), 0, 0))
		}
	}

	return entity, nil
}

// setField assigns v to field, dereferencing into pointer fields and
// converting between numeric kinds.
func setField(field reflect.Value, v any) error {
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	target := field
	if field.Kind() == reflect.Ptr {
		target = reflect.New(field.Type().Elem()).Elem()
	}

	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(target.Type()):
		target.Set(src)
	case isNumeric(src.Kind()) && isNumeric(target.Kind()):
		target.Set(src.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, target.Type())
	}

	if field.Kind() == reflect.Ptr {
		field.Set(target.Addr())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// encodeEntity returns the property map for entity. Nil pointer fields are
// omitted so the store never holds explicit nulls.
func encodeEntity(meta *entityMetadata, entity any) map[string]any {
	val := reflect.ValueOf(entity)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	props := make(map[string]any, len(meta.Mappings))
	for fieldName, propName := range meta.Mappings {
		f := val.FieldByName(fieldName)
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		props[propName] = f.Interface()
	}
	return props
}
