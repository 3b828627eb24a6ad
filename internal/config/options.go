package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EngineOptions is the validated, in-memory form of every UCI option this
// engine exposes.
type EngineOptions struct {
	HashMB       int
	MoveOverhead int
	Threads      int
	SoftNodes    bool
	SoftHardMult int
	EvalFile     string
}

// DefaultOptions returns the engine's compiled-in defaults.
func DefaultOptions() EngineOptions {
	return EngineOptions{
		HashMB:       64,
		MoveOverhead: 30,
		Threads:      1,
		SoftNodes:    false,
		SoftHardMult: 4,
		EvalFile:     "",
	}
}

// OptionError reports an invalid setoption name or value. The caller (the
// UCI front end) reports it to the controller without disturbing the
// engine's prior settings.
type OptionError struct {
	Name  string
	Value string
	Msg   string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("setoption %s=%q: %s", e.Name, e.Value, e.Msg)
}

// ParseOption validates a single setoption name/value pair against opts,
// returning the updated options. opts is not mutated in place so that a
// caller can discard an invalid update and keep the previous settings.
func ParseOption(opts EngineOptions, name, value string) (EngineOptions, error) {
	switch strings.ToLower(name) {
	case "hash":
		n, err := parseIntRange(name, value, 1, 3072)
		if err != nil {
			return opts, err
		}
		opts.HashMB = n

	case "moveoverhead":
		n, err := parseIntRange(name, value, 0, 1000)
		if err != nil {
			return opts, err
		}
		opts.MoveOverhead = n

	case "threads":
		n, err := parseIntRange(name, value, 1, 1)
		if err != nil {
			return opts, err
		}
		opts.Threads = n

	case "softnodes":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return opts, &OptionError{name, value, "expected true/false"}
		}
		opts.SoftNodes = b

	case "softhardmult":
		n, err := parseIntRange(name, value, 1, 20)
		if err != nil {
			return opts, err
		}
		opts.SoftHardMult = n

	case "evalfile":
		if value == "" {
			return opts, &OptionError{name, value, "path must not be empty"}
		}
		opts.EvalFile = value

	default:
		return opts, &OptionError{name, value, "unknown option"}
	}
	return opts, nil
}

func parseIntRange(name, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &OptionError{name, value, "expected an integer"}
	}
	if n < lo || n > hi {
		return 0, &OptionError{name, value, fmt.Sprintf("must be in [%d, %d]", lo, hi)}
	}
	return n, nil
}

// Descriptor describes one option in the shape "uci" output needs: name,
// type, default, and (for spin) min/max.
type Descriptor struct {
	Name    string
	Type    string // "spin", "check", "string"
	Default string
	Min     int
	Max     int
}

// Descriptors returns the option table in declaration order, matching what
// a "uci" command should print.
func Descriptors() []Descriptor {
	return []Descriptor{
		{Name: "Hash", Type: "spin", Default: "64", Min: 1, Max: 3072},
		{Name: "MoveOverhead", Type: "spin", Default: "30", Min: 0, Max: 1000},
		{Name: "Threads", Type: "spin", Default: "1", Min: 1, Max: 1},
		{Name: "SoftNodes", Type: "check", Default: "false"},
		{Name: "SoftHardMult", Type: "spin", Default: "4", Min: 1, Max: 20},
		{Name: "EvalFile", Type: "string", Default: ""},
	}
}
