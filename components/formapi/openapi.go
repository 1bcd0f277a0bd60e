package formapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/schema"
	"github.com/goliatone/go-contentforms/pkg/validation"
)

// Document describes the JSON routes. Each declared form gets its own open
// operation whose session payload carries the form's submission schema.
func Document(store *schema.Store, title, version string) *openapi3.T {
	paths := openapi3.NewPaths()
	session := sessionSchema()
	errorBody := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())

	paths.Set("/forms", &openapi3.PathItem{
		Get: operation("listForms", "List declared forms", nil, map[int]*openapi3.Schema{
			http.StatusOK: openapi3.NewObjectSchema().WithProperty("data", openapi3.NewArraySchema().WithItems(
				openapi3.NewObjectSchema().
					WithProperty("id", openapi3.NewStringSchema()).
					WithProperty("title", openapi3.NewStringSchema()).
					WithProperty("description", openapi3.NewStringSchema()).
					WithProperty("quickFill", openapi3.NewBoolSchema()),
			)),
		}),
	})

	if store != nil {
		for _, id := range store.IDs() {
			formSchema, ok := store.Form(id)
			if !ok {
				continue
			}
			opened := sessionSchema()
			opened.Properties["payload"] = openapi3.NewSchemaRef("", validation.PayloadSchema(formSchema))
			paths.Set("/forms/"+id+"/sessions", &openapi3.PathItem{
				Summary: formSchema.Title,
				Post: operation("open_"+id, "Open a "+formSchema.Title+" session",
					openapi3.NewObjectSchema().
						WithProperty("subject", openapi3.NewStringSchema()).
						WithProperty("values", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())),
					map[int]*openapi3.Schema{
						http.StatusCreated:  opened,
						http.StatusNotFound: errorBody,
					}),
			})
			paths.Set("/forms/"+id+"/payload-schema", &openapi3.PathItem{
				Get: operation("payloadSchema_"+id, formSchema.Title+" submission schema", nil, map[int]*openapi3.Schema{
					http.StatusOK: openapi3.NewObjectSchema(),
				}),
			})
		}
	}

	idParam := func(name string) *openapi3.ParameterRef {
		return &openapi3.ParameterRef{Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())}
	}
	sessionPath := func(suffix string, item *openapi3.PathItem, extra ...string) {
		item.Parameters = openapi3.Parameters{idParam("id")}
		for _, name := range extra {
			item.Parameters = append(item.Parameters, idParam(name))
		}
		paths.Set("/sessions/{id}"+suffix, item)
	}
	responses := func(extra map[int]*openapi3.Schema) map[int]*openapi3.Schema {
		out := map[int]*openapi3.Schema{
			http.StatusOK:       session,
			http.StatusNotFound: errorBody,
			http.StatusConflict: errorBody,
		}
		for code, schema := range extra {
			out[code] = schema
		}
		return out
	}
	value := openapi3.NewObjectSchema().WithProperty("value", openapi3.NewStringSchema())
	values := openapi3.NewObjectSchema().WithProperty("values", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))
	subject := openapi3.NewObjectSchema().WithProperty("subject", openapi3.NewStringSchema())
	validationBody := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))).
		WithProperty("formErrors", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))

	sessionPath("", &openapi3.PathItem{
		Get:    operation("getSession", "Session snapshot", nil, responses(nil)),
		Delete: operation("disposeSession", "Dispose the session", nil, map[int]*openapi3.Schema{http.StatusNoContent: nil, http.StatusNotFound: errorBody}),
	})
	sessionPath("/open", &openapi3.PathItem{Post: operation("reopen", "Reopen the form", nil, responses(nil))})
	sessionPath("/fields/{field}", &openapi3.PathItem{Put: operation("setField", "Set a record field", value, responses(nil))}, "field")
	sessionPath("/lists/{list}/staging", &openapi3.PathItem{Put: operation("stage", "Stage list inputs", values, responses(nil))}, "list")
	sessionPath("/lists/{list}/items", &openapi3.PathItem{Post: operation("addItem", "Add the staged item", values, responses(nil))}, "list")
	sessionPath("/lists/{list}/items/{index}", &openapi3.PathItem{Delete: operation("removeItem", "Remove an item", nil, responses(nil))}, "list", "index")
	sessionPath("/lists/{list}/keydown", &openapi3.PathItem{Post: operation("keyDown", "Route a key press", openapi3.NewObjectSchema().WithProperty("key", openapi3.NewStringSchema()), responses(nil))}, "list")
	sessionPath("/subject", &openapi3.PathItem{Put: operation("setSubject", "Set the quick-fill subject", subject, responses(nil))})
	sessionPath("/quickfill", &openapi3.PathItem{Post: operation("quickFill", "Start a quick-fill", subject, responses(map[int]*openapi3.Schema{http.StatusAccepted: session}))})
	sessionPath("/quickfill/retry", &openapi3.PathItem{Post: operation("retryQuickFill", "Retry a failed quick-fill", nil, responses(map[int]*openapi3.Schema{http.StatusAccepted: session}))})
	sessionPath("/quickfill/wait", &openapi3.PathItem{Get: operation("waitQuickFill", "Wait for the pending quick-fill", nil, responses(map[int]*openapi3.Schema{http.StatusAccepted: session}))})
	sessionPath("/submit", &openapi3.PathItem{Post: operation("submit", "Submit the form", nil, responses(map[int]*openapi3.Schema{http.StatusUnprocessableEntity: validationBody}))})
	sessionPath("/cancel", &openapi3.PathItem{Post: operation("cancel", "Cancel the form", nil, responses(nil))})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   paths,
	}
}

func operation(id, summary string, body *openapi3.Schema, responses map[int]*openapi3.Schema) *openapi3.Operation {
	codes := make([]int, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	opts := make([]openapi3.NewResponsesOption, 0, len(codes))
	for _, code := range codes {
		response := openapi3.NewResponse().WithDescription(http.StatusText(code))
		if schema := responses[code]; schema != nil {
			response = response.WithJSONSchema(schema)
		}
		opts = append(opts, openapi3.WithName(strconv.Itoa(code), response))
	}

	op := &openapi3.Operation{
		OperationID: id,
		Summary:     summary,
		Responses:   openapi3.NewResponses(opts...),
	}
	if body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithJSONSchema(body)}
	}
	return op
}

func sessionSchema() *openapi3.Schema {
	items := openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("form", openapi3.NewStringSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("open", openapi3.NewBoolSchema()).
		WithProperty("record", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())).
		WithProperty("lists", openapi3.NewObjectSchema().WithAdditionalProperties(items)).
		WithProperty("subject", openapi3.NewStringSchema()).
		WithProperty("fill", openapi3.NewStringSchema().WithEnum(
			string(form.FillIdle), string(form.FillGenerating), string(form.FillFailed),
		)).
		WithProperty("fillError", openapi3.NewStringSchema()).
		WithProperty("revision", openapi3.NewIntegerSchema()).
		WithProperty("payload", openapi3.NewObjectSchema())
}
