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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/btp-abi/database"
	"github.com/icon-project/btp-abi/registry"
)

type Client struct {
	*http.Client
	baseUrl    string
	baseApiUrl string
	lv         log.Level
	l          log.Logger
}

func NewClient(url string, transportLogLevel log.Level, l log.Logger) *Client {
	l = Logger(l)
	url = strings.TrimSuffix(url, "/")
	return &Client{
		Client:     NewHttpClient(transportLogLevel, l),
		baseUrl:    url,
		baseApiUrl: url + GroupUrlApi,
		lv:         EnsureTransportLogLevel(transportLogLevel),
		l:          l,
	}
}

func (c *Client) apiUrl(format string, args ...interface{}) string {
	return c.baseApiUrl + fmt.Sprintf(format, args...)
}

func (c *Client) do(method, url string, reqPtr, respPtr interface{}) (resp *http.Response, err error) {
	var reqBody io.Reader
	if reqPtr != nil {
		var b []byte
		if b, err = json.Marshal(reqPtr); err != nil {
			c.l.Debugf("fail to encode Request err:%+v", err)
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}
	if !strings.HasPrefix(url, c.baseUrl) {
		url = c.baseApiUrl + url
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		c.l.Debugf("fail to NewRequest err:%+v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.l.Debugf("url=%s", req.URL)
	if resp, err = c.Client.Do(req); err != nil {
		return
	}
	if resp.StatusCode/100 != 2 {
		er := &ErrorResponse{}
		if err = UnmarshalBody(resp.Body, er); err != nil {
			c.l.Debugf("fail to decode ErrorResponse err:%+v", err)
			err = errors.Errorf("server response not success, StatusCode:%d",
				resp.StatusCode)
			return
		}
		err = er
		return
	}
	if respPtr != nil {
		if err = UnmarshalBody(resp.Body, respPtr); err != nil {
			c.l.Debugf("fail to decode resp err:%+v", err)
			return
		}
	} else {
		resp.Body.Close()
	}
	return
}

func (c *Client) Encode(req *EncodeRequest) (hexutil.Bytes, error) {
	resp := &EncodeResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl(UrlEncode), req, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Decode returns the values in their JSON form, numbers being json.Number.
func (c *Client) Decode(req *DecodeRequest) ([]interface{}, error) {
	resp := &DecodeResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl(UrlDecode), req, resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) Selector(signature string) (*SelectorResponse, error) {
	resp := &SelectorResponse{}
	q := url.Values{"signature": []string{signature}}
	if _, err := c.do(http.MethodGet, c.apiUrl("%s?%s", UrlSelector, q.Encode()), nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Register(signature string) (*registry.MethodRecord, error) {
	resp := &registry.MethodRecord{}
	req := &RegisterRequest{Signature: signature}
	if _, err := c.do(http.MethodPost, c.apiUrl(UrlMethods), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Methods(p database.Pageable) (*database.Page[registry.MethodRecord], error) {
	resp := &database.Page[registry.MethodRecord]{}
	q := url.Values{}
	q.Set("page", fmt.Sprint(p.Page))
	q.Set("size", fmt.Sprint(p.Size))
	if len(p.Sort) > 0 {
		q.Set("sort", p.Sort)
	}
	if _, err := c.do(http.MethodGet, c.apiUrl("%s?%s", UrlMethods, q.Encode()), nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) methodUrl(name, suffix string) string {
	return c.apiUrl("%s/%s%s", UrlMethods, url.PathEscape(name), suffix)
}

func (c *Client) Method(name string) (*registry.MethodRecord, error) {
	resp := &registry.MethodRecord{}
	if _, err := c.do(http.MethodGet, c.methodUrl(name, ""), nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RemoveMethod(name string) error {
	_, err := c.do(http.MethodDelete, c.methodUrl(name, ""), nil, nil)
	return err
}

func (c *Client) EncodeCall(name string, values []interface{}) (hexutil.Bytes, error) {
	resp := &EncodeResponse{}
	req := &CallEncodeRequest{Values: values}
	if _, err := c.do(http.MethodPost, c.methodUrl(name, UrlEncode), req, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) DecodeCall(name string, data []byte) ([]interface{}, error) {
	resp := &DecodeResponse{}
	req := &CallDecodeRequest{Data: data}
	if _, err := c.do(http.MethodPost, c.methodUrl(name, UrlDecode), req, resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// EncodeStream sends each request over one websocket connection and calls cb
// with the index of the request and its result.
func (c *Client) EncodeStream(ctx context.Context, reqs []*EncodeRequest, cb func(i int, data hexutil.Bytes, err error) error) error {
	conn, err := c.wsConnect(ctx, c.apiUrl(UrlWsEncode))
	if err != nil {
		return err
	}
	defer c.wsClose(conn)
	for i, req := range reqs {
		if err = c.wsWrite(conn, req); err != nil {
			return err
		}
		reply := &wsEncodeReply{}
		if err = c.wsRead(ctx, conn, reply); err != nil {
			return err
		}
		data, re := reply.result()
		if err = cb(i, data, re); err != nil {
			return err
		}
	}
	return conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Client) wsID(conn *websocket.Conn) string {
	return conn.LocalAddr().String()
}

func (c *Client) wsConnect(ctx context.Context, url string) (*websocket.Conn, error) {
	url = strings.Replace(url, "http", "ws", 1)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if err == websocket.ErrBadHandshake {
			er := &ErrorResponse{}
			if err = UnmarshalBody(resp.Body, er); err != nil {
				err = errors.Errorf("server response not success, StatusCode:%d",
					resp.StatusCode)
			} else {
				err = er
			}
		}
		c.l.Debugf("fail to Dial url:%s err:%+v", url, err)
		return nil, err
	}
	c.l.Debugf("[%s]wsConnect", c.wsID(conn))
	return conn, nil
}

func (c *Client) wsClose(conn *websocket.Conn) {
	c.l.Debugf("[%s]wsClose", c.wsID(conn))
	conn.Close()
}

func (c *Client) wsRead(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	id := c.wsID(conn)
	ch := make(chan interface{}, 1)
	go func() {
		_, b, err := conn.ReadMessage()
		if err != nil {
			ch <- err
		} else {
			ch <- b
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case inf := <-ch:
		switch t := inf.(type) {
		case error:
			return t
		case []byte:
			if err := unmarshalJSON(t, v); err != nil {
				return err
			}
			c.l.Logf(c.lv, "[%s]wsRead=%s", id, t)
			return nil
		default:
			c.l.Panicln("unreachable code")
			return nil
		}
	}
}

func (c *Client) wsWrite(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.l.Logf(c.lv, "[%s]wsWrite=%s", c.wsID(conn), b)
	return conn.WriteMessage(websocket.TextMessage, b)
}
