// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/imrouter/lib/codec"
	"github.com/bureau-foundation/imrouter/lib/imapi"
)

func runCall(ctx context.Context, g globals, args []string, out io.Writer) error {
	var raw, host bool
	flagSet := pflag.NewFlagSet("call", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.BoolVar(&raw, "raw", false, "print the response data in CBOR diagnostic notation")
	flagSet.BoolVar(&host, "host", false, "send to the host socket (local_* and host_* actions)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() == 0 {
		return fmt.Errorf("usage: imrouter call <action> [key=value ...]")
	}
	action := flagSet.Arg(0)
	fields, err := parseFields(flagSet.Args()[1:])
	if err != nil {
		return err
	}

	socket := g.clientSocket
	if host {
		socket = g.hostSocket
	}
	client := imapi.NewClient(socket)
	logger := newCommandLogger().With("command", "call", "action", action, "socket", socket)

	if raw {
		var data codec.RawMessage
		if err := client.Call(ctx, action, fields, &data); err != nil {
			return err
		}
		if len(data) == 0 {
			logger.Info("action succeeded with no data")
			return nil
		}
		diagnostic, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("formatting response: %w", err)
		}
		_, err = fmt.Fprintln(out, diagnostic)
		return err
	}

	var result any
	if err := client.Call(ctx, action, fields, &result); err != nil {
		return err
	}
	if result == nil {
		logger.Info("action succeeded with no data")
		return nil
	}
	return writeJSON(out, result)
}

// parseFields converts key=value arguments into request fields.
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", arg)
		}
		if _, exists := fields[key]; exists {
			return nil, fmt.Errorf("field %q given twice", key)
		}
		parsed, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields[key] = parsed
	}
	return fields, nil
}

// parseValue types a command-line value by its shape. JSON syntax
// (objects, arrays, quoted strings) is decoded with integers kept
// integral so they bind to integer request fields.
func parseValue(value string) (any, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if number, err := strconv.ParseInt(value, 10, 64); err == nil {
		return number, nil
	}
	if value != "" && strings.ContainsRune(`{["`, rune(value[0])) {
		decoder := json.NewDecoder(bytes.NewReader([]byte(value)))
		decoder.UseNumber()
		var decoded any
		if err := decoder.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decoding JSON value: %w", err)
		}
		return integralNumbers(decoded), nil
	}
	return value, nil
}

func integralNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if integer, err := v.Int64(); err == nil {
			return integer
		}
		float, _ := v.Float64()
		return float
	case map[string]any:
		for key, element := range v {
			v[key] = integralNumbers(element)
		}
		return v
	case []any:
		for i, element := range v {
			v[i] = integralNumbers(element)
		}
		return v
	default:
		return value
	}
}
