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
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/contract"
	"github.com/icon-project/btp-abi/database"
	"github.com/icon-project/btp-abi/registry"
)

const (
	testAddress = "0x0000000000000000000000000000000000001234"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	db, err := database.OpenDatabase(database.Config{
		Driver: database.DriverSQLite,
		DBName: ":memory:",
	}, log.GlobalLogger())
	require.NoError(t, err)
	cache := abi.MustNewTypeCache(16)
	reg, err := registry.NewRegistry(db, cache, log.GlobalLogger())
	require.NoError(t, err)
	s := NewServer("", log.TraceLevel, reg, cache, log.GlobalLogger())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, NewClient(ts.URL, log.TraceLevel, log.GlobalLogger())
}

func assertErrorResponse(t *testing.T, code errors.Code, err error) *ErrorResponse {
	require.Error(t, err)
	er, ok := err.(*ErrorResponse)
	require.True(t, ok, "%T %+v", err, err)
	assert.Equal(t, code, er.Code, er.Message)
	return er
}

func Test_ServerEncode(t *testing.T) {
	_, c := newTestServer(t)

	types := []string{"uint256", "string", "bool", "address"}
	ts, err := abi.ParseTypes(types)
	require.NoError(t, err)
	expected, err := abi.Encode(ts, []interface{}{
		big.NewInt(1), "hello", true, common.HexToAddress(testAddress),
	}, false)
	require.NoError(t, err)

	data, err := c.Encode(&EncodeRequest{
		Types:  types,
		Values: []interface{}{"0x1", "hello", true, testAddress},
	})
	require.NoError(t, err)
	assert.Equal(t, hexutil.Bytes(expected), data)

	values, err := c.Decode(&DecodeRequest{Types: types, Data: data})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"0x1", "hello", true, testAddress}, values)

	data, err = c.Encode(&EncodeRequest{
		Types:  []string{"uint8", "string"},
		Values: []interface{}{"0x12", "ab"},
		Packed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "0x126162", data.String())

	data, err = c.Encode(&EncodeRequest{
		Types:  []string{"uint256[]", "ufixed128x128"},
		Values: []interface{}{[]interface{}{"1", "0x2"}, "1.5"},
	})
	require.NoError(t, err)
	values, err = c.Decode(&DecodeRequest{Types: []string{"uint256[]", "ufixed128x128"}, Data: data})
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []interface{}{"0x1", "0x2"}, values[0])
}

func Test_ServerSelector(t *testing.T) {
	_, c := newTestServer(t)

	resp, err := c.Selector("transfer(address to, uint amount)")
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", resp.Signature)
	assert.Equal(t, "0xa9059cbb", resp.Selector.String())

	_, err = c.Selector("transfer(address")
	assertErrorResponse(t, contract.ErrorCodeInvalidSignature, err)
}

func Test_ServerMethods(t *testing.T) {
	_, c := newTestServer(t)

	r, err := c.Register("transfer(address to, uint256 amount)")
	require.NoError(t, err)
	assert.Equal(t, "transfer", r.Name)
	assert.Equal(t, "transfer(address,uint256)", r.Signature)
	assert.Equal(t, "0xa9059cbb", r.Selector)

	_, err = c.Register("approve(address,uint256)")
	require.NoError(t, err)

	page, err := c.Methods(database.Pageable{Size: 1, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "approve", page.Content[0].Name)

	_, err = c.Methods(database.Pageable{Sort: "name; drop table method"})
	assertErrorResponse(t, contract.ErrorCodeInvalidParam, err)

	found, err := c.Method("transfer")
	require.NoError(t, err)
	assert.Equal(t, r.ID, found.ID)

	data, err := c.EncodeCall("transfer", []interface{}{testAddress, "100"})
	require.NoError(t, err)
	require.Len(t, data, abi.SelectorSize+2*abi.WordSize)
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(data[:abi.SelectorSize]))

	values, err := c.DecodeCall("transfer", data)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{testAddress, "0x64"}, values)

	_, err = c.DecodeCall("approve", data)
	assertErrorResponse(t, contract.ErrorCodeInvalidData, err)

	_, err = c.EncodeCall("transfer", []interface{}{testAddress})
	require.Error(t, err)

	require.NoError(t, c.RemoveMethod("transfer"))
	_, err = c.Method("transfer")
	assertErrorResponse(t, contract.ErrorCodeNotFoundMethod, err)
	_, err = c.EncodeCall("transfer", []interface{}{testAddress, "100"})
	assertErrorResponse(t, contract.ErrorCodeNotFoundMethod, err)
}

func Test_ServerErrors(t *testing.T) {
	ts, c := newTestServer(t)

	_, err := c.Encode(&EncodeRequest{
		Types:  []string{"uint8"},
		Values: []interface{}{"0x100"},
	})
	er := assertErrorResponse(t, contract.ErrorCodeValueOutOfRange, err)
	ed := &ErrorData{}
	require.NoError(t, er.UnmarshalData(ed))
	assert.Equal(t, "ValueOutOfRange", ed.Name)

	_, err = c.Encode(&EncodeRequest{
		Types:  []string{"bool"},
		Values: []interface{}{"yes"},
	})
	assertErrorResponse(t, contract.ErrorCodeTypeMismatch, err)

	_, err = c.Encode(&EncodeRequest{
		Types:  []string{"uint7"},
		Values: []interface{}{"1"},
	})
	assertErrorResponse(t, contract.ErrorCodeInvalidSignature, err)

	_, err = c.Encode(&EncodeRequest{})
	assertErrorResponse(t, contract.ErrorCodeInvalidParam, err)

	_, err = c.Decode(&DecodeRequest{
		Types: []string{"uint256"},
		Data:  []byte{0x01},
	})
	assertErrorResponse(t, contract.ErrorCodeInvalidData, err)

	for _, tc := range []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, UrlEncode, `{"types":["uint8"],"values":["0x100"]}`, http.StatusBadRequest},
		{http.MethodPost, UrlEncode, `{"types":`, http.StatusBadRequest},
		{http.MethodGet, UrlMethods + "/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	} {
		t.Run(tc.method+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.URL+GroupUrlApi+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func Test_ServerWsEncode(t *testing.T) {
	_, c := newTestServer(t)

	reqs := []*EncodeRequest{
		{Types: []string{"uint8"}, Values: []interface{}{"0x1"}},
		{Types: []string{"uint8"}, Values: []interface{}{"0x100"}},
		{Types: []string{"bytes"}, Values: []interface{}{"0x0102"}, Packed: true},
	}
	results := make([]hexutil.Bytes, len(reqs))
	errs := make([]error, len(reqs))
	err := c.EncodeStream(context.Background(), reqs, func(i int, data hexutil.Bytes, err error) error {
		results[i], errs[i] = data, err
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, errs[0])
	assert.Equal(t, common.LeftPadBytes([]byte{0x01}, abi.WordSize), []byte(results[0]))
	assertErrorResponse(t, contract.ErrorCodeValueOutOfRange, errs[1])
	assert.NoError(t, errs[2])
	assert.Equal(t, "0x0102", results[2].String())
}

func Test_ServerApiDocs(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + UrlApiDocs)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := make(map[string]interface{})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	for _, p := range []string{
		GroupUrlApi + UrlEncode,
		GroupUrlApi + UrlDecode,
		GroupUrlApi + UrlSelector,
		GroupUrlApi + UrlMethods,
		GroupUrlApi + UrlMethods + "/{" + ParamName + "}",
	} {
		assert.Contains(t, paths, p)
	}
}

func Test_ServerMetrics(t *testing.T) {
	ts, c := newTestServer(t)

	_, err := c.Encode(&EncodeRequest{Types: []string{"uint8"}, Values: []interface{}{"0x1"}})
	require.NoError(t, err)
	_, err = c.Encode(&EncodeRequest{Types: []string{"uint8"}, Values: []interface{}{"0x100"}})
	require.Error(t, err)

	resp, err := http.Get(ts.URL + UrlMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, `btp_abi_api_requests_total{method="POST",path="/api/encode",status="200"} 1`)
	assert.Contains(t, body, `btp_abi_api_requests_total{method="POST",path="/api/encode",status="400"} 1`)
	assert.Contains(t, body, `btp_abi_api_errors_total{code="ValueOutOfRange"} 1`)
}
