package forms

import "reflect"

// labelOf reads the user-facing label of a form field.
func labelOf(form any, field string) string {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if sf, ok := t.FieldByName(field); ok {
		if label := sf.Tag.Get("label"); label != "" {
			return label
		}
	}
	return field
}
