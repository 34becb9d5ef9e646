// Package openapi describes the record wizard HTTP API as an OpenAPI 3
// document built with kin-openapi.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// Version is reported in the document info block.
const Version = "1.0.0"

func ref(name string, schema *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schema)
}

func schemas() openapi3.Schemas {
	stringList := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())

	formData := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	formData.Description = "Field name to scalar or list of scalars"

	record := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema()).
		WithProperty("ttl", openapi3.NewIntegerSchema()).
		WithProperty("priority", openapi3.NewIntegerSchema()).
		WithRequired([]string{"name", "type", "content", "ttl", "priority"})

	validation := openapi3.NewObjectSchema().
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("errors", stringList).
		WithProperty("warnings", stringList).
		WithRequired([]string{"valid", "errors", "warnings"})

	metadata := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("recordType", openapi3.NewStringSchema())

	option := openapi3.NewObjectSchema().
		WithProperty("value", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema())

	visibleWhen := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("operator", openapi3.NewStringSchema().WithEnum("==", "!=", "in", "not_in")).
		WithProperty("value", &openapi3.Schema{})

	field := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema().WithEnum(
			"text", "email", "url", "number", "textarea", "select", "radio", "checkbox", "checkbox_group")).
		WithProperty("required", openapi3.NewBoolSchema()).
		WithProperty("default", &openapi3.Schema{}).
		WithProperty("placeholder", openapi3.NewStringSchema()).
		WithProperty("help", openapi3.NewStringSchema()).
		WithProperty("min", openapi3.NewIntegerSchema()).
		WithProperty("max", openapi3.NewIntegerSchema()).
		WithProperty("pattern", openapi3.NewStringSchema()).
		WithProperty("rows", openapi3.NewIntegerSchema()).
		WithPropertyRef("options", &openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(option)}).
		WithProperty("visible_when", visibleWhen)

	section := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema().WithEnum("normal", "info", "warning")).
		WithProperty("content", openapi3.NewStringSchema()).
		WithProperty("fields", openapi3.NewArraySchema().WithItems(field))

	formSchema := openapi3.NewObjectSchema().
		WithProperty("sections", openapi3.NewArraySchema().WithItems(section))

	parseRequest := openapi3.NewObjectSchema().
		WithProperty("content", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("ttl", openapi3.NewIntegerSchema()).
		WithProperty("priority", openapi3.NewIntegerSchema()).
		WithRequired([]string{"content"})

	preview := openapi3.NewObjectSchema().WithProperty("preview", openapi3.NewStringSchema())
	apiError := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())

	return openapi3.Schemas{
		"FormData":         &openapi3.SchemaRef{Value: formData},
		"Record":           &openapi3.SchemaRef{Value: record},
		"ValidationResult": &openapi3.SchemaRef{Value: validation},
		"Metadata":         &openapi3.SchemaRef{Value: metadata},
		"FormSchema":       &openapi3.SchemaRef{Value: formSchema},
		"ParseRequest":     &openapi3.SchemaRef{Value: parseRequest},
		"Preview":          &openapi3.SchemaRef{Value: preview},
		"Error":            &openapi3.SchemaRef{Value: apiError},
	}
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schema)}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema)}
}

// Document builds and validates the API description.
func Document(ctx context.Context) (*openapi3.T, error) {
	components := schemas()
	use := func(name string) *openapi3.SchemaRef {
		return ref(name, components[name].Value)
	}
	errorResponses := func(responses ...openapi3.NewResponsesOption) *openapi3.Responses {
		responses = append(responses,
			openapi3.WithStatus(http.StatusNotFound, jsonResponse("Wizard type not available", use("Error"))),
			openapi3.WithStatus(http.StatusServiceUnavailable, jsonResponse("Record wizards are disabled", use("Error"))),
		)
		return openapi3.NewResponses(responses...)
	}
	typeParam := openapi3.Parameters{
		&openapi3.ParameterRef{Value: openapi3.NewPathParameter("type").
			WithDescription("Wizard type, e.g. spf").
			WithSchema(openapi3.NewStringSchema())},
	}
	post := func(id, summary string, body *openapi3.SchemaRef, responses *openapi3.Responses) *openapi3.PathItem {
		return &openapi3.PathItem{Post: &openapi3.Operation{
			OperationID: id,
			Summary:     summary,
			Parameters:  typeParam,
			RequestBody: jsonBody(body),
			Responses:   responses,
		}}
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "DNS Record Wizards",
			Description: "Generate, validate and parse DMARC, SPF, DKIM, CAA, TLSA and SRV records from simplified form input.",
			Version:     Version,
		},
		Components: &openapi3.Components{Schemas: components},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/wizards", &openapi3.PathItem{Get: &openapi3.Operation{
				OperationID: "listWizards",
				Summary:     "List available wizards",
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, jsonResponse("Available wizards",
						&openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(components["Metadata"].Value)})),
				),
			}}),
			openapi3.WithPath("/wizards/{type}/schema", &openapi3.PathItem{Get: &openapi3.Operation{
				OperationID: "getWizardSchema",
				Summary:     "Describe the wizard form",
				Parameters:  typeParam,
				Responses:   errorResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Form schema", use("FormSchema")))),
			}}),
			openapi3.WithPath("/wizards/{type}/validate", post("validateWizard", "Validate form data",
				use("FormData"), errorResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Validation result", use("ValidationResult")))))),
			openapi3.WithPath("/wizards/{type}/preview", post("previewWizard", "Preview the generated record",
				use("FormData"), errorResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Preview text", use("Preview")))))),
			openapi3.WithPath("/wizards/{type}/generate", post("generateRecord", "Generate the DNS record",
				use("FormData"), errorResponses(
					openapi3.WithStatus(http.StatusOK, jsonResponse("Generated record", use("Record"))),
					openapi3.WithStatus(http.StatusUnprocessableEntity, jsonResponse("Form data is invalid", use("ValidationResult"))),
				))),
			openapi3.WithPath("/wizards/{type}/parse", post("parseRecord", "Rebuild form data from stored content",
				use("ParseRequest"), errorResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Form data", use("FormData")))))),
		),
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

// JSON renders the validated document.
func JSON(ctx context.Context) ([]byte, error) {
	doc, err := Document(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	return payload, nil
}
