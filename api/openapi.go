/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/btp-abi/database"
	"github.com/icon-project/btp-abi/registry"
)

const (
	openapi3Version     = "3.0.3"
	infoTitle           = "BTP ABI - OpenAPI " + openapi3Version
	infoDefaultVersion  = "0.1.0"
	tagCodec            = "Codec"
	tagMethod           = "Method"
	schemaRefPrefix     = "#/components/schemas/"
	schemaErrorResponse = "ErrorResponse"
	schemaMethodRecord  = "MethodRecord"
	schemaEncodeResp    = "EncodeResponse"
	schemaDecodeResp    = "DecodeResponse"
	parameterRefPrefix  = "#/components/parameters/"
)

var (
	infoLicenseApache = &openapi3.License{
		Name: "Apache 2.0",
		URL:  "http://www.apache.org/licenses/LICENSE-2.0.html",
	}
	defaultSchemas = map[string]*openapi3.Schema{
		schemaErrorResponse: MustGenerateSchema(&ErrorResponse{}),
		schemaMethodRecord:  MustGenerateSchema(&registry.MethodRecord{}),
		schemaEncodeResp:    MustGenerateSchema(&EncodeResponse{}),
		schemaDecodeResp:    MustGenerateSchema(&DecodeResponse{}),
	}
)

func MustGenerateSchema(v interface{}) *openapi3.Schema {
	ref, err := openapi3gen.NewSchemaRefForValue(v, nil)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return ref.Value
}

func DefaultSchemaRef(name string) *openapi3.SchemaRef {
	if s, ok := defaultSchemas[name]; ok {
		return openapi3.NewSchemaRef(schemaRefPrefix+name, s)
	}
	return nil
}

func NewSchemas() openapi3.Schemas {
	schemas := make(openapi3.Schemas)
	for k, s := range defaultSchemas {
		schemas[k] = s.NewRef()
	}
	return schemas
}

func NewTag(name, desc string) *openapi3.Tag {
	return &openapi3.Tag{
		Name:        name,
		Description: desc,
	}
}

func PutParameter(pm openapi3.ParametersMap, p *openapi3.Parameter) *openapi3.ParameterRef {
	pm[p.Name] = &openapi3.ParameterRef{Value: p}
	return &openapi3.ParameterRef{Ref: parameterRefPrefix + p.Name, Value: p}
}

func NewSuccessResponse() *openapi3.Response {
	return openapi3.NewResponse().WithDescription("Successful operation")
}

func ResponsesWithResponse(m openapi3.Responses, status int, resp *openapi3.Response) openapi3.Responses {
	if m == nil {
		m = make(openapi3.Responses)
	}
	m[strconv.FormatInt(int64(status), 10)] = &openapi3.ResponseRef{
		Value: resp,
	}
	return m
}

// newResponses returns the success response with the error responses every operation may return.
func newResponses(success *openapi3.Response, statuses ...int) openapi3.Responses {
	m := ResponsesWithResponse(nil, http.StatusOK, success)
	er := openapi3.NewResponse().WithDescription("Error").
		WithJSONSchemaRef(DefaultSchemaRef(schemaErrorResponse))
	for _, status := range statuses {
		m = ResponsesWithResponse(m, status, er)
	}
	return m
}

func newJSONRequestBody(v interface{}) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithContent(
			openapi3.NewContentWithJSONSchema(MustGenerateSchema(v))),
	}
}

func newOperation(tag, summary string, body interface{}, success *openapi3.Response, statuses ...int) *openapi3.Operation {
	op := &openapi3.Operation{
		Tags:      []string{tag},
		Summary:   summary,
		Responses: newResponses(success, statuses...),
	}
	if body != nil {
		op.RequestBody = newJSONRequestBody(body)
	}
	return op
}

func NewOpenAPISpec() openapi3.T {
	oas := openapi3.T{
		OpenAPI: openapi3Version,
		Info: &openapi3.Info{
			Title:   infoTitle,
			Version: infoDefaultVersion,
			License: infoLicenseApache,
		},
		Tags: openapi3.Tags{
			NewTag(tagCodec, "Encode and decode with type signatures"),
			NewTag(tagMethod, "Registered method signatures"),
		},
		Paths: make(openapi3.Paths),
		Components: &openapi3.Components{
			Schemas:    NewSchemas(),
			Parameters: make(openapi3.ParametersMap),
		},
	}
	encodeResp := NewSuccessResponse().WithJSONSchemaRef(DefaultSchemaRef(schemaEncodeResp))
	decodeResp := NewSuccessResponse().WithJSONSchemaRef(DefaultSchemaRef(schemaDecodeResp))
	recordResp := NewSuccessResponse().WithJSONSchemaRef(DefaultSchemaRef(schemaMethodRecord))

	oas.Paths[GroupUrlApi+UrlEncode] = &openapi3.PathItem{
		Post: newOperation(tagCodec, "Encode values", &EncodeRequest{}, encodeResp, http.StatusBadRequest),
	}
	oas.Paths[GroupUrlApi+UrlDecode] = &openapi3.PathItem{
		Post: newOperation(tagCodec, "Decode data", &DecodeRequest{}, decodeResp, http.StatusBadRequest),
	}
	selector := newOperation(tagCodec, "Function selector of a signature", nil,
		NewSuccessResponse().WithJSONSchema(MustGenerateSchema(&SelectorResponse{})), http.StatusBadRequest)
	selector.Parameters = openapi3.Parameters{{
		Value: openapi3.NewQueryParameter("signature").WithRequired(true).
			WithSchema(openapi3.NewStringSchema()),
	}}
	oas.Paths[GroupUrlApi+UrlSelector] = &openapi3.PathItem{Get: selector}

	list := newOperation(tagMethod, "List methods", nil,
		NewSuccessResponse().WithJSONSchema(MustGenerateSchema(&database.Page[registry.MethodRecord]{})),
		http.StatusBadRequest)
	list.Parameters = openapi3.Parameters{
		{Value: openapi3.NewQueryParameter("page").WithSchema(openapi3.NewIntegerSchema().WithMin(0))},
		{Value: openapi3.NewQueryParameter("size").WithSchema(openapi3.NewIntegerSchema().WithMin(0))},
		{Value: openapi3.NewQueryParameter("sort").WithSchema(openapi3.NewStringSchema())},
	}
	oas.Paths[GroupUrlApi+UrlMethods] = &openapi3.PathItem{
		Get:  list,
		Post: newOperation(tagMethod, "Register method", &RegisterRequest{}, recordResp, http.StatusBadRequest),
	}

	npr := PutParameter(oas.Components.Parameters,
		openapi3.NewPathParameter(ParamName).WithRequired(true).WithSchema(openapi3.NewStringSchema()))
	methodUrl := GroupUrlApi + UrlMethods + "/{" + ParamName + "}"
	remove := newOperation(tagMethod, "Remove method", nil,
		openapi3.NewResponse().WithDescription("Removed"), http.StatusNotFound)
	remove.Responses = ResponsesWithResponse(remove.Responses, http.StatusNoContent,
		openapi3.NewResponse().WithDescription("Removed"))
	delete(remove.Responses, strconv.Itoa(http.StatusOK))
	oas.Paths[methodUrl] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{npr},
		Get:        newOperation(tagMethod, "Get method", nil, recordResp, http.StatusNotFound),
		Delete:     remove,
	}
	oas.Paths[methodUrl+UrlEncode] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{npr},
		Post: newOperation(tagMethod, "Encode call data", &CallEncodeRequest{}, encodeResp,
			http.StatusBadRequest, http.StatusNotFound),
	}
	oas.Paths[methodUrl+UrlDecode] = &openapi3.PathItem{
		Parameters: openapi3.Parameters{npr},
		Post: newOperation(tagMethod, "Decode call data", &CallDecodeRequest{}, decodeResp,
			http.StatusBadRequest, http.StatusNotFound),
	}
	return oas
}
