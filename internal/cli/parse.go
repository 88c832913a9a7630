// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// parse.go - Decode a chat response body without sending anything.
//
// Command: parse [FILE|-]
// Short:   Show how keyai reads a stored chat response
//
// Reads the body from FILE, or from stdin when FILE is "-" or omitted, and
// prints the answer exactly as the overlay would show it.
//
// Examples:
//   keyai parse response.json
//   curl -s $URL | keyai parse -
//   keyai parse --json response.json
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/keyai/internal/chat"
)

// maxParseInput bounds how much of a file parse reads.
const maxParseInput = 8 << 20

// HandleParse handles the "parse" command.
func HandleParse(env *Env, args Args) error {
	raw, err := readParseInput(env, args.File)
	if err != nil {
		return err
	}

	resp := chat.Parse(raw)
	if args.JSON {
		return NewJSONResponse("parse", answerData(resp, "")).Print(env.Stdout)
	}
	if resp.SessionID != "" {
		fmt.Fprintf(env.Stderr, "%s%s\n", RenderLabel("sessionId"), DimStyle.Render(resp.SessionID))
	}
	fmt.Fprintln(env.Stdout, chat.Format(resp))
	return nil
}

func readParseInput(env *Env, file string) ([]byte, error) {
	var r io.Reader
	if file == "" || file == "-" {
		r = env.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, &ValidationError{Field: "file", Value: file, Reason: err.Error()}
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxParseInput))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}
