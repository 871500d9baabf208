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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/icon-project/btp2/common/errors"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/contract"
)

type ErrorResponse struct {
	Code    errors.Code     `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("code:%d, message:%s", e.Code, e.Message)
}

func (e *ErrorResponse) ErrorCode() errors.Code {
	return e.Code
}

func (e *ErrorResponse) MarshalData(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.Data = b
	return nil
}

func (e *ErrorResponse) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// ErrorData is the detail of an encoding error.
type ErrorData struct {
	Name     string `json:"name"`
	Value    string `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
}

func NewErrorResponse(err error) *ErrorResponse {
	er := &ErrorResponse{
		Code:    errors.CodeOf(err),
		Message: err.Error(),
	}
	if er.Code == errors.Success {
		er.Code = errors.UnknownError
	}
	if ae, ok := err.(*abi.Error); ok {
		if mErr := er.MarshalData(&ErrorData{
			Name:     contract.CodeName(ae.ErrorCode()),
			Value:    valueString(ae.Value()),
			Expected: ae.Expected(),
		}); mErr != nil {
			er.Data = nil
		}
	}
	return er
}

func valueString(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// StatusOf returns the http status of err, 400 for invalid input and 404 for unknown methods.
func StatusOf(err error) int {
	switch {
	case contract.ErrorCodeNotFoundMethod.Equals(err):
		return http.StatusNotFound
	case contract.IsClientError(err), errors.IllegalArgumentError.Equals(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorOf unwraps echo.HTTPError and returns the http status with the error to report.
func httpErrorOf(err error) (int, error) {
	if he, ok := err.(*echo.HTTPError); ok {
		if e, ok := he.Message.(error); ok {
			return he.Code, e
		}
		return he.Code, errors.Errorf("%v", he.Message)
	}
	return StatusOf(err), err
}

func HttpErrorHandler(err error, c echo.Context) {
	code, err := httpErrorOf(err)
	er := NewErrorResponse(err)
	if !c.Response().Committed {
		if err = c.JSON(code, er); err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
