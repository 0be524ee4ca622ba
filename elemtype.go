package arenakit

import (
	"reflect"
)

// checkElementType rejects types the garbage collector would need to scan
// or that occupy no memory.
func checkElementType(t reflect.Type) error {
	if t.Size() == 0 {
		return &ElementTypeError{Type: t, Reason: "zero-sized"}
	}
	if path, ok := pointerPath(t, t.String()); ok {
		return &ElementTypeError{Type: t, Reason: "contains pointers at " + path}
	}
	return nil
}

// pointerPath returns the first location inside t that holds a pointer.
func pointerPath(t reflect.Type, path string) (string, bool) {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "", false
	case reflect.Array:
		if t.Len() == 0 {
			return "", false
		}
		return pointerPath(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if p, ok := pointerPath(f.Type, path+"."+f.Name); ok {
				return p, true
			}
		}
		return "", false
	default:
		return path, true
	}
}
