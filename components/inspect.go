package components

import (
	"fmt"
	"reflect"
	"strings"
)

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`, e.g. `inspect:"label,fmt:%.1fs"`.
func ParseTag(tag string) (widget string, options map[string]string) {
	options = make(map[string]string)
	if tag == "" {
		return "", options
	}
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), ":"); ok {
			options[k] = v
		}
	}
	return strings.TrimSpace(parts[0]), options
}

// DescribeComponent formats the tagged fields of a component struct. Only
// fields carrying an inspect tag other than "skip" are included; the group is
// the component's type name.
func DescribeComponent(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field
	for i := range v.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("inspect")
		if !ok || !sf.IsExported() {
			continue
		}
		widget, options := ParseTag(tag)
		if widget == "skip" {
			continue
		}

		format := options["fmt"]
		if format == "" {
			format = defaultFormat(sf.Type.Kind())
		}
		fields = append(fields, Field{
			FieldDescriptor: FieldDescriptor{
				ID:     strings.ToLower(sf.Name),
				Label:  sf.Name,
				Format: format,
				Group:  t.Name(),
			},
			Value: fmt.Sprintf(format, v.Field(i).Interface()),
		})
	}
	return fields
}

func defaultFormat(k reflect.Kind) string {
	switch k {
	case reflect.Float32, reflect.Float64:
		return "%.2f"
	default:
		return "%v"
	}
}
