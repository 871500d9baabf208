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
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/contract"
	"github.com/icon-project/btp-abi/database"
	"github.com/icon-project/btp-abi/registry"
)

const (
	ParamName          = "name"
	GroupUrlApi        = "/api"
	UrlEncode          = "/encode"
	UrlDecode          = "/decode"
	UrlSelector        = "/selector"
	UrlMethods         = "/methods"
	UrlWsEncode        = "/ws/encode"
	UrlApiDocs         = "/api-docs"
	UrlMetrics         = "/metrics"
	WsHandshakeTimeout = time.Second * 3
	ShutdownTimeout    = time.Second
)

func Logger(l log.Logger) log.Logger {
	return l.WithFields(log.Fields{log.FieldKeyModule: "api"})
}

type Server struct {
	e     *echo.Echo
	addr  string
	reg   *registry.Registry
	cache *abi.TypeCache
	oas   openapi3.T
	m     *Metrics
	u     websocket.Upgrader
	once  sync.Once
	lv    log.Level
	l     log.Logger
}

func NewServer(addr string, transportLogLevel log.Level, reg *registry.Registry, cache *abi.TypeCache, l log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HttpErrorHandler
	return &Server{
		e:     e,
		addr:  addr,
		reg:   reg,
		cache: cache,
		oas:   NewOpenAPISpec(),
		m:     NewMetrics(),
		u: websocket.Upgrader{
			HandshakeTimeout: WsHandshakeTimeout,
		},
		lv: EnsureTransportLogLevel(transportLogLevel),
		l:  Logger(l),
	}
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.e.Use(
			middleware.CORSWithConfig(middleware.CORSConfig{
				MaxAge: 3600,
			}),
			middleware.Recover(),
			s.m.Middleware())
		s.RegisterAPIHandler(s.e.Group(GroupUrlApi))
		s.e.GET(UrlApiDocs, func(c echo.Context) error {
			return c.JSON(http.StatusOK, &s.oas)
		})
		s.e.GET(UrlMetrics, echo.WrapHandler(s.m.Handler()))
	})
	return s.e
}

func (s *Server) Start() error {
	s.l.Infoln("starting the server")
	s.Handler()
	return s.e.Start(s.addr)
}

func (s *Server) Stop() error {
	s.l.Infoln("shutting down the server")
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.e.Shutdown(ctx)
}

func (s *Server) bind(c echo.Context, v interface{}) error {
	if c.Request().Method == http.MethodGet {
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, v); err != nil {
			return contract.ErrorCodeInvalidParam.Wrap(err, "invalid query parameters")
		}
	} else if err := UnmarshalRequestBody(c, v); err != nil {
		s.l.Debugf("fail to UnmarshalRequestBody err:%+v", err)
		return contract.ErrorCodeInvalidParam.Wrap(err, "invalid request body")
	}
	return c.Validate(v)
}

func (s *Server) RegisterAPIHandler(g *echo.Group) {
	g.Use(middleware.BodyDump(func(c echo.Context, reqBody []byte, resBody []byte) {
		s.l.Debugf("url=%s", c.Request().RequestURI)
		s.l.Logf(s.lv, "request=%s", reqBody)
		s.l.Logf(s.lv, "response=%s", resBody)
	}))
	g.POST(UrlEncode, func(c echo.Context) error {
		req := &EncodeRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		resp, err := s.encode(req)
		if err != nil {
			s.l.Debugf("fail to encode err:%+v", err)
			return err
		}
		return c.JSON(http.StatusOK, resp)
	})
	g.POST(UrlDecode, func(c echo.Context) error {
		req := &DecodeRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		types, err := s.cache.Types(req.Types...)
		if err != nil {
			return err
		}
		values, err := abi.Decode(types, req.Data)
		if err != nil {
			s.l.Debugf("fail to decode err:%+v", err)
			return err
		}
		return s.decodeResponse(c, values)
	})
	g.GET(UrlSelector, func(c echo.Context) error {
		req := &SelectorRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		m, err := s.cache.Method(req.Signature)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, &SelectorResponse{
			Signature: m.Sig,
			Selector:  m.ID,
		})
	})
	g.GET(UrlWsEncode, s.wsEncode)

	g.POST(UrlMethods, func(c echo.Context) error {
		req := &RegisterRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		r, err := s.reg.Register(req.Signature)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, r)
	})
	g.GET(UrlMethods, func(c echo.Context) error {
		p := &database.Pageable{}
		if err := s.bind(c, p); err != nil {
			return err
		}
		page, err := s.reg.List(*p)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, page)
	})
	methodApi := g.Group(UrlMethods + "/:" + ParamName)
	methodApi.GET("", func(c echo.Context) error {
		r, err := s.reg.Get(c.Param(ParamName))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, r)
	})
	methodApi.DELETE("", func(c echo.Context) error {
		if err := s.reg.Remove(c.Param(ParamName)); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	methodApi.POST(UrlEncode, func(c echo.Context) error {
		req := &CallEncodeRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		m, err := s.reg.Method(c.Param(ParamName))
		if err != nil {
			return err
		}
		data, err := m.Encode(ValuesOf(m.Inputs, req.Values)...)
		if err != nil {
			s.l.Debugf("fail to encode call method:%s err:%+v", m.Name, err)
			return err
		}
		return c.JSON(http.StatusOK, &EncodeResponse{Data: data})
	})
	methodApi.POST(UrlDecode, func(c echo.Context) error {
		req := &CallDecodeRequest{}
		if err := s.bind(c, req); err != nil {
			return err
		}
		values, err := s.reg.DecodeCall(c.Param(ParamName), req.Data)
		if err != nil {
			return err
		}
		return s.decodeResponse(c, values)
	})
}

func (s *Server) encode(req *EncodeRequest) (*EncodeResponse, error) {
	types, err := s.cache.Types(req.Types...)
	if err != nil {
		return nil, err
	}
	data, err := abi.Encode(types, ValuesOf(types, req.Values), req.Packed)
	if err != nil {
		return nil, err
	}
	return &EncodeResponse{Data: data}, nil
}

func (s *Server) decodeResponse(c echo.Context, values []interface{}) error {
	params, err := ParamsOf(values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &DecodeResponse{Values: params})
}

// wsEncode answers every encode request frame with an EncodeResponse or an ErrorResponse.
func (s *Server) wsEncode(c echo.Context) error {
	conn, err := s.wsConnect(c)
	if err != nil {
		return err
	}
	defer s.wsClose(conn)
	id := s.wsID(conn)
	err = s.wsReadLoop(c.Request().Context(), conn, func(b []byte) error {
		req := &EncodeRequest{}
		var (
			resp *EncodeResponse
			err  error
		)
		if err = unmarshalJSON(b, req); err != nil {
			err = contract.ErrorCodeInvalidParam.Wrap(err, "invalid request")
		} else if err = c.Validate(req); err == nil {
			resp, err = s.encode(req)
		}
		if err != nil {
			s.m.ObserveError(err)
			return s.wsWrite(conn, NewErrorResponse(err))
		}
		return s.wsWrite(conn, resp)
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.l.Debugf("[%s]fail to wsReadLoop err:%+v", id, err)
	}
	return nil
}

func (s *Server) wsID(conn *websocket.Conn) string {
	return conn.RemoteAddr().String()
}

func (s *Server) wsConnect(c echo.Context) (*websocket.Conn, error) {
	conn, err := s.u.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.l.Debugf("fail to Upgrade err:%+v", err)
		return nil, err
	}
	s.l.Debugf("[%s]wsConnect", s.wsID(conn))
	return conn, nil
}

func (s *Server) wsClose(conn *websocket.Conn) {
	s.l.Debugf("[%s]wsClose", s.wsID(conn))
	conn.Close()
}

func (s *Server) wsWrite(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.l.Logf(s.lv, "[%s]wsWrite=%s", s.wsID(conn), b)
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) wsReadLoop(ctx context.Context, conn *websocket.Conn, cb func(b []byte) error) error {
	id := s.wsID(conn)
	ech := make(chan error, 1)
	go func() {
		defer func() {
			s.l.Debugf("[%s]wsReadLoop finish", id)
		}()
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				ech <- err
				break
			}
			s.l.Logf(s.lv, "[%s]wsReadLoop=%s", id, b)
			if err = cb(b); err != nil {
				ech <- err
				break
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.l.Debugf("[%s]wsReadLoop context Done", id)
		return ctx.Err()
	case err := <-ech:
		return err
	}
}

func UnmarshalRequestBody(c echo.Context, v interface{}) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	return UnmarshalBody(c.Request().Body, v)
}
