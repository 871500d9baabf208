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
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/cli"
	"github.com/spf13/cobra"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/api"
)

// NewCodecCommands adds the commands that encode and decode without a server.
func NewCodecCommands(parentCmd *cobra.Command) {
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := encodeRequestOf(cmd.Flags())
			if err != nil {
				return err
			}
			types, err := abi.ParseTypes(req.Types)
			if err != nil {
				return err
			}
			data, err := abi.Encode(types, api.ValuesOf(types, req.Values), req.Packed)
			if err != nil {
				return err
			}
			cmd.Println(hexutil.Encode(data))
			return nil
		},
	}
	addEncodeFlags(encodeCmd.Flags())
	cli.MarkAnnotationRequired(encodeCmd.Flags(), "type")
	parentCmd.AddCommand(encodeCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode DATA",
		Short: "Decode hex data",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sigs, err := cmd.Flags().GetStringArray("type")
			if err != nil {
				return err
			}
			types, err := abi.ParseTypes(sigs)
			if err != nil {
				return err
			}
			values, err := abi.DecodeHex(types, args[0])
			if err != nil {
				return err
			}
			params, err := api.ParamsOf(values)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, params)
		},
	}
	decodeCmd.Flags().StringArrayP("type", "t", nil, "type signature, repeat for each value")
	cli.MarkAnnotationRequired(decodeCmd.Flags(), "type")
	parentCmd.AddCommand(decodeCmd)

	parentCmd.AddCommand(&cobra.Command{
		Use:   "selector SIGNATURE",
		Short: "Print selector of method signature",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := abi.ParseMethod(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, &api.SelectorResponse{
				Signature: m.Sig,
				Selector:  m.ID,
			})
		},
	})
}
