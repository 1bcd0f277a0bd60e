package validation

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// MetadataMaxLength caps a field's value length when set to a positive integer.
const MetadataMaxLength = "max_length"

// PayloadSchema builds the OpenAPI schema describing a form's submission
// payload. Every record field and list is a required property; optional enum
// fields also accept the empty string.
func PayloadSchema(form model.FormSchema) *openapi3.Schema {
	root := openapi3.NewObjectSchema().WithoutAdditionalProperties()
	root.Title = form.Title
	root.Description = form.Description
	required := make([]string, 0, len(form.Fields)+len(form.Lists))

	for _, field := range form.Fields {
		root.WithProperty(field.Name, fieldSchema(field, false))
		required = append(required, field.Name)
	}
	for _, list := range form.Lists {
		root.WithProperty(list.Name, listSchema(list))
		required = append(required, list.Name)
	}
	root.Required = required
	return root
}

func listSchema(list model.List) *openapi3.Schema {
	var item *openapi3.Schema
	if list.Flatten == model.FlattenValue && len(list.Fields) == 1 {
		item = fieldSchema(list.Fields[0], true)
	} else {
		item = openapi3.NewObjectSchema().WithoutAdditionalProperties()
		var required []string
		for _, field := range list.Fields {
			item.WithProperty(field.Name, fieldSchema(field, true))
			required = append(required, field.Name)
		}
		item.Required = required
	}
	out := openapi3.NewArraySchema().WithItems(item)
	out.Title = list.Label
	out.Description = list.Description
	return out
}

// fieldSchema describes one string value. Item sub-fields marked required get a
// minimum length; record fields rely on the form's own required check.
func fieldSchema(field model.Field, item bool) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Title = field.Label
	s.Description = field.Description
	if item && field.Required {
		s.WithMinLength(1)
	}
	if limit := maxLength(field); limit > 0 {
		s.WithMaxLength(limit)
	}
	if len(field.Enum) > 0 {
		values := make([]any, 0, len(field.Enum)+1)
		if !field.Required {
			values = append(values, "")
		}
		for _, value := range field.Enum {
			values = append(values, value)
		}
		s.WithEnum(values...)
	}
	if field.Default != "" {
		s.Default = field.Default
	}
	return s
}

func maxLength(field model.Field) int64 {
	raw := strings.TrimSpace(field.Metadata[MetadataMaxLength])
	if raw == "" {
		return 0
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
