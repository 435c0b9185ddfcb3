package util

import "reflect"

// IsInterfaceValNil checks if the interface holds nil, including a typed nil pointer,
// which `i == nil` does not tell.
func IsInterfaceValNil(i any) bool {
	if i == nil {
		return true
	}

	v := reflect.ValueOf(i)

	return v.Kind() == reflect.Ptr && v.IsNil()
}
