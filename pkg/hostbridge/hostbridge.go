// Package hostbridge is the call surface the host process talks to. A call
// is either a single "command|arg|arg" string or a command with an argument
// list; both are routed through the dispatcher and answered with a JSON
// array the host can parse with parseSimpleArray.
package hostbridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/industrialmelee/extension/internal/dispatcher"
)

const (
	CmdTimestamp = ":TIMESTAMP:"
	CmdVersion   = ":VERSION:"

	argSeparator = "|"
)

// Bridge answers host calls.
type Bridge struct {
	dispatcher *dispatcher.Dispatcher
	version    string
	buildDate  string
	now        func() time.Time
}

// New creates a bridge routing to d. version and buildDate are what
// :VERSION: and the host's version probe report.
func New(d *dispatcher.Dispatcher, version, buildDate string) *Bridge {
	if version == "" {
		version = "No version set"
	}
	return &Bridge{
		dispatcher: d,
		version:    version,
		buildDate:  buildDate,
		now:        time.Now,
	}
}

// Version is returned when the host first loads the extension.
func (b *Bridge) Version() string {
	return b.version
}

// Call handles the single-string form. Everything after the first "|" is
// split into arguments.
func (b *Bridge) Call(input string) string {
	parts := strings.Split(input, argSeparator)
	return b.CallArgs(parts[0], parts[1:])
}

// CallArgs handles the command-plus-arguments form.
func (b *Bridge) CallArgs(command string, args []string) string {
	switch command {
	case CmdTimestamp:
		return FormatResponse(strconv.FormatInt(b.now().UTC().UnixNano(), 10), nil)
	case CmdVersion:
		return FormatResponse([]string{b.version, b.buildDate}, nil)
	}

	if b.dispatcher == nil || !b.dispatcher.HasHandler(command) {
		return FormatResponse(nil, fmt.Errorf("no handler registered for %s", command))
	}

	result, err := b.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: b.now(),
	})
	return FormatResponse(result, err)
}

// FormatResponse renders a result as ["ok"], ["ok", result] or
// ["error", message]. Results that cannot be encoded become errors.
func FormatResponse(result any, err error) string {
	if err != nil {
		return encode("error", err.Error())
	}
	if result == nil {
		return `["ok"]`
	}
	data, mErr := json.Marshal(result)
	if mErr != nil {
		return encode("error", fmt.Sprintf("failed to encode result: %v", mErr))
	}
	return `["ok", ` + string(data) + `]`
}

func encode(status, msg string) string {
	data, _ := json.Marshal(msg)
	return `["` + status + `", ` + string(data) + `]`
}
