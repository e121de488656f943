// Package parser converts raw host arguments into typed commands. It does
// no lookups and touches no state; handlers decide what the commands mean.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/industrialmelee/extension/internal/util"
)

var (
	ErrNotEnoughArgs   = errors.New("not enough arguments")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Parser provides pure []string -> command struct conversion.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// args cleans data and checks it has at least n entries.
func args(data []string, n int, what string) ([]string, error) {
	if len(data) < n {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", what, ErrNotEnoughArgs, len(data), n)
	}
	return util.CleanArgs(data), nil
}

func invalid(what, field, value string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %s %q: %v", what, ErrInvalidArgument, field, value, err)
	}
	return fmt.Errorf("%s: %w: %s %q", what, ErrInvalidArgument, field, value)
}

func requireID(what, field, value string) error {
	if value == "" {
		return invalid(what, field, value, nil)
	}
	return nil
}

func parseFloat(what, field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, invalid(what, field, value, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(what, field, value, nil)
	}
	return f, nil
}

func parseInt(what, field, value string) (int, error) {
	v, err := util.ParseInt(value)
	if err != nil {
		return 0, invalid(what, field, value, err)
	}
	return v, nil
}

func parseBool(what, field, value string) (bool, error) {
	v, err := util.ParseBool(value)
	if err != nil {
		return false, invalid(what, field, value, err)
	}
	return v, nil
}

// optional returns data[i] or "" when absent.
func optional(data []string, i int) string {
	if i < len(data) {
		return data[i]
	}
	return ""
}
