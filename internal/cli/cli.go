// Package cli implements the unzer command line: raw verb calls plus a
// few webhook helpers, printing the decoded response as indented JSON.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/unzer-simple/internal/app"
	"github.com/samvad-hq/unzer-simple/internal/config"
	"github.com/samvad-hq/unzer-simple/internal/logger"
	"github.com/samvad-hq/unzer-simple/pkg/unzer"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitAPIError = 3
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const usage = `usage:
  unzer [--json] [-H key:value]... <get|post|put|delete> <path> [body]
  unzer webhooks list
  unzer webhooks registered <url> [event]
  unzer webhooks retrieve <url>

flags:
`

// Main builds the client from cfg and runs one command. Verbose request
// logging goes to stderr so stdout only ever carries the response.
func Main(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if err := cfg.RequirePrivateKey(); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFailure
	}

	var log logger.Logger
	if cfg.UnzerVerbose {
		zl, err := logger.InitTo(cfg, zapcore.Lock(zapcore.AddSync(stderr)))
		if err != nil {
			fmt.Fprintf(stderr, "init logger: %v\n", err)
			return ExitFailure
		}
		defer logger.Close()
		log = zl
	}

	return Run(ctx, app.NewClient(cfg, log), args, stdout, stderr)
}

// Run executes one command and returns the process exit code.
func Run(ctx context.Context, client *unzer.Client, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("unzer", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	useJSON := fs.Bool("json", false, "send POST/PUT bodies as application/json instead of form encoding")
	rawHeaders := fs.StringArrayP("header", "H", nil, "extra request header as key:value (repeatable)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return ExitOK
		}
		return ExitUsage
	}

	headers, err := parseHeaders(*rawHeaders)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return ExitUsage
	}

	cmd := command{client: client, headers: headers, useJSON: *useJSON, stdout: stdout, stderr: stderr}
	switch verb := strings.ToLower(rest[0]); verb {
	case "get", "delete":
		if len(rest) != 2 {
			fs.Usage()
			return ExitUsage
		}
		return cmd.verb(ctx, verb, rest[1], "")
	case "post", "put":
		if len(rest) < 2 || len(rest) > 3 {
			fs.Usage()
			return ExitUsage
		}
		body := ""
		if len(rest) == 3 {
			body = rest[2]
		}
		return cmd.verb(ctx, verb, rest[1], body)
	case "webhooks":
		return cmd.webhooks(ctx, rest[1:], fs.Usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		fs.Usage()
		return ExitUsage
	}
}

type command struct {
	client  *unzer.Client
	headers map[string]string
	useJSON bool
	stdout  io.Writer
	stderr  io.Writer
}

func (c command) verb(ctx context.Context, verb, path, body string) int {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var (
		resp *unzer.Response
		err  error
	)
	switch verb {
	case "get":
		resp, err = c.client.Get(ctx, path, c.headers)
	case "delete":
		resp, err = c.client.Delete(ctx, path, c.headers)
	case "post":
		resp, err = c.client.Post(ctx, path, body, c.headers, c.useJSON)
	case "put":
		resp, err = c.client.Put(ctx, path, body, c.headers, c.useJSON)
	}
	return c.response(resp, err)
}

func (c command) webhooks(ctx context.Context, args []string, usage func()) int {
	if len(args) == 0 {
		usage()
		return ExitUsage
	}
	w := c.client.Webhooks

	switch args[0] {
	case "list":
		if len(args) != 1 {
			usage()
			return ExitUsage
		}
		events, err := w.List(ctx)
		if err != nil {
			return c.fail(err)
		}
		if events == nil {
			events = []unzer.WebhookEvent{}
		}
		return c.print(events)
	case "registered":
		if len(args) < 2 || len(args) > 3 {
			usage()
			return ExitUsage
		}
		event := ""
		if len(args) == 3 {
			event = args[2]
		}
		match, err := w.IsRegistered(ctx, args[1], event)
		if err != nil {
			return c.fail(err)
		}
		if match == nil {
			fmt.Fprintln(c.stdout, "null")
			return ExitFailure
		}
		return c.print(match)
	case "retrieve":
		if len(args) != 2 {
			usage()
			return ExitUsage
		}
		resp, err := w.ResolveRetrieveURL(ctx, args[1])
		return c.response(resp, err)
	default:
		fmt.Fprintf(c.stderr, "unknown webhooks command %q\n", args[0])
		usage()
		return ExitUsage
	}
}

// response prints the decoded body. API error statuses still print the
// body but exit non-zero.
func (c command) response(resp *unzer.Response, err error) int {
	if err != nil {
		return c.fail(err)
	}
	if code := c.print(resp.Data); code != ExitOK {
		return code
	}
	if resp.IsError() {
		fmt.Fprintf(c.stderr, "api returned status %d\n", resp.StatusCode)
		return ExitAPIError
	}
	return ExitOK
}

func (c command) print(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.stdout, string(out))
	return ExitOK
}

func (c command) fail(err error) int {
	fmt.Fprintf(c.stderr, "error: %v\n", err)
	return ExitFailure
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected key:value", h)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}
