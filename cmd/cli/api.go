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

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/icon-project/btp-abi/api"
	"github.com/icon-project/btp-abi/database"
)

// GetValues returns the values of an array flag, each parsed as JSON or taken as a string if it is not.
func GetValues(fs *pflag.FlagSet, name string) ([]interface{}, error) {
	ss, err := fs.GetStringArray(name)
	if err != nil {
		return nil, err
	}
	r := make([]interface{}, len(ss))
	for i, s := range ss {
		var v interface{}
		if err = api.UnmarshalBody(io.NopCloser(strings.NewReader(s)), &v); err != nil {
			v = s
		}
		r[i] = v
	}
	return r, nil
}

func ReadAndUnmarshal(file string, v interface{}) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	return api.UnmarshalBody(f, v)
}

func ClientPersistentPreRunE(vc *viper.Viper, c *api.Client) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateFlagsWithViper(vc, cmd.Flags()); err != nil {
			return err
		}
		l := log.GlobalLogger()
		if lv, err := log.ParseLevel(vc.GetString("log_level")); err != nil {
			return errors.Wrapf(err, "fail to parseLevel log_level err:%s", err.Error())
		} else {
			l.SetLevel(lv)
		}
		if lv, err := log.ParseLevel(vc.GetString("console_level")); err != nil {
			return errors.Wrapf(err, "fail to parseLevel console_level err:%s", err.Error())
		} else {
			l.SetConsoleLevel(lv)
		}
		dumpLogLevel, err := log.ParseLevel(vc.GetString("dump_log_level"))
		if err != nil {
			return errors.Wrapf(err, "fail to parseLevel dump_log_level err:%s", err.Error())
		} else {
			dumpLogLevel = api.EnsureTransportLogLevel(dumpLogLevel)
		}
		*c = *api.NewClient(vc.GetString("url"), dumpLogLevel, l)
		return nil
	}
}

func AddClientRequiredFlags(c *cobra.Command) {
	pFlags := c.PersistentFlags()
	pFlags.String("url", "http://localhost:8080", "server address")
	pFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("console_level", "trace", "Console log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("dump_log_level", "trace", "client dump log level (trace,debug,info)")
}

func addEncodeFlags(fs *pflag.FlagSet) {
	fs.StringArrayP("type", "t", nil, "type signature, repeat for each value")
	fs.StringArrayP("value", "v", nil, "value as json or plain text, repeat for each type")
	fs.Bool("packed", false, "use non-standard packed encoding")
}

func encodeRequestOf(fs *pflag.FlagSet) (*api.EncodeRequest, error) {
	req := &api.EncodeRequest{}
	var err error
	if req.Types, err = fs.GetStringArray("type"); err != nil {
		return nil, err
	}
	if req.Values, err = GetValues(fs, "value"); err != nil {
		return nil, err
	}
	if req.Packed, err = fs.GetBool("packed"); err != nil {
		return nil, err
	}
	return req, nil
}

func NewApiCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "api", "API cli")
	var (
		c api.Client
	)
	rootCmd.PersistentPreRunE = ClientPersistentPreRunE(rootVc, &c)
	AddClientRequiredFlags(rootCmd)
	cli.BindPFlags(rootVc, rootCmd.PersistentFlags())

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := encodeRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			data, err := c.Encode(req)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, data)
		},
	}
	addEncodeFlags(encodeCmd.Flags())
	cli.MarkAnnotationRequired(encodeCmd.Flags(), "type")
	rootCmd.AddCommand(encodeCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode DATA",
		Short: "Decode hex data",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexutil.Decode(args[0])
			if err != nil {
				return err
			}
			types, err := cmd.Flags().GetStringArray("type")
			if err != nil {
				return err
			}
			values, err := c.Decode(&api.DecodeRequest{Types: types, Data: data})
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, values)
		},
	}
	decodeCmd.Flags().StringArrayP("type", "t", nil, "type signature, repeat for each value")
	cli.MarkAnnotationRequired(decodeCmd.Flags(), "type")
	rootCmd.AddCommand(decodeCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "selector SIGNATURE",
		Short: "Get selector of method signature",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Selector(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})

	streamCmd := &cobra.Command{
		Use:   "stream FILE",
		Short: "Encode list of requests in json file over websocket",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqs []*api.EncodeRequest
			if err := ReadAndUnmarshal(args[0], &reqs); err != nil {
				return err
			}
			return c.EncodeStream(context.Background(), reqs, func(i int, data hexutil.Bytes, err error) error {
				if err != nil {
					cmd.PrintErrf("[%d] %s\n", i, err.Error())
					return nil
				}
				cmd.Printf("[%d] %s\n", i, data)
				return nil
			})
		},
	}
	rootCmd.AddCommand(streamCmd)

	NewMethodsCommand(rootCmd, rootVc, &c)
	return rootCmd, rootVc
}

func NewMethodsCommand(parentCmd *cobra.Command, parentVc *viper.Viper, c *api.Client) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "methods", "Method registry")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Get list of registered methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			p := database.Pageable{}
			var err error
			if p.Page, err = fs.GetUint("page"); err != nil {
				return err
			}
			if p.Size, err = fs.GetUint("size"); err != nil {
				return err
			}
			if p.Sort, err = fs.GetString("sort"); err != nil {
				return err
			}
			r, err := c.Methods(p)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	listFlags := listCmd.Flags()
	listFlags.Uint("page", 0, "page number, 0-indexed")
	listFlags.Uint("size", 0, "page size, zero for unlimited")
	listFlags.String("sort", "", "sort order, for example 'name desc'")
	rootCmd.AddCommand(listCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "register SIGNATURE",
		Short: "Register method signature",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Register(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Get registered method",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Method(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "remove NAME",
		Short: "Remove registered method",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.RemoveMethod(args[0]); err != nil {
				return err
			}
			cmd.Println("Operation success")
			return nil
		},
	})

	callEncodeCmd := &cobra.Command{
		Use:   "encode NAME",
		Short: "Encode call data of registered method",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := GetValues(cmd.Flags(), "value")
			if err != nil {
				return err
			}
			if raw := cmd.Flag("raw").Value.String(); len(raw) > 0 {
				if err = ReadAndUnmarshal(raw, &values); err != nil {
					return err
				}
			}
			data, err := c.EncodeCall(args[0], values)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, data)
		},
	}
	callEncodeCmd.Flags().StringArrayP("value", "v", nil, "argument as json or plain text, repeat for each input")
	callEncodeCmd.Flags().String("raw", "", "json file of argument list, if used, '--value' will be ignored")
	rootCmd.AddCommand(callEncodeCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "decode NAME DATA",
		Short: "Decode call data of registered method",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexutil.Decode(args[1])
			if err != nil {
				return err
			}
			values, err := c.DecodeCall(args[0], data)
			if err != nil {
				return err
			}
			if err = cli.JsonPrettyPrintln(os.Stdout, values); err != nil {
				return errors.Errorf("failed JsonIntend resp=%+v, err=%+v", values, err)
			}
			return nil
		},
	})
	return rootCmd, rootVc
}
