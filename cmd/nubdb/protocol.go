// protocol.go: the line-oriented command protocol (§6)
//
// The parser's value token is a single whitespace-delimited token;
// values containing whitespace are not portable across the line
// protocol (§6, §9 known limitation). The on-disk binary format is
// byte-exact and unaffected — only this text interface is limited.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"strconv"
	"strings"

	"github.com/agilira/nubdb"
)

// dispatch parses one protocol line and applies it to engine, returning
// the response line (always newline-terminated) and whether the
// connection should close afterwards (QUIT/EXIT).
func dispatch(engine *nubdb.Engine, line string) (response string, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "ERROR: empty command\n", false
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "SET":
		return cmdSet(engine, args), false
	case "GET":
		return cmdGet(engine, args), false
	case "DELETE", "DEL":
		return cmdDelete(engine, args), false
	case "EXISTS":
		return cmdExists(engine, args), false
	case "INCR":
		return cmdIncrDecr(engine, args, 1), false
	case "DECR":
		return cmdIncrDecr(engine, args, -1), false
	case "SIZE":
		return cmdSize(engine), false
	case "CLEAR":
		engine.Clear()
		return "OK\n", false
	case "QUIT", "EXIT":
		return "Goodbye\n", true
	default:
		return "ERROR: Unknown command\n", false
	}
}

func cmdSet(engine *nubdb.Engine, args []string) string {
	if len(args) < 2 {
		return "ERROR: SET requires key and value\n"
	}

	var ttl int64
	if len(args) >= 3 {
		parsed, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return "ERROR: malformed ttl_seconds\n"
		}
		ttl = parsed
	}

	if err := engine.Set(args[0], args[1], ttl); err != nil {
		return "ERROR: " + err.Error() + "\n"
	}
	return "OK\n"
}

func cmdGet(engine *nubdb.Engine, args []string) string {
	if len(args) != 1 {
		return "ERROR: GET requires exactly one key\n"
	}
	value, found := engine.Get(args[0])
	if !found {
		return "(nil)\n"
	}
	return "\"" + value + "\"\n"
}

func cmdDelete(engine *nubdb.Engine, args []string) string {
	if len(args) != 1 {
		return "ERROR: DELETE requires exactly one key\n"
	}
	removed, err := engine.Delete(args[0])
	if err != nil {
		return "ERROR: " + err.Error() + "\n"
	}
	if !removed {
		return "(not found)\n"
	}
	return "OK\n"
}

func cmdExists(engine *nubdb.Engine, args []string) string {
	if len(args) != 1 {
		return "ERROR: EXISTS requires exactly one key\n"
	}
	if engine.Exists(args[0]) {
		return "1\n"
	}
	return "0\n"
}

func cmdIncrDecr(engine *nubdb.Engine, args []string, sign int64) string {
	if len(args) != 1 {
		return "ERROR: INCR/DECR require exactly one key\n"
	}
	value, err := engine.Increment(args[0], sign)
	if err != nil {
		return "ERROR: " + err.Error() + "\n"
	}
	return strconv.FormatInt(value, 10) + "\n"
}

func cmdSize(engine *nubdb.Engine) string {
	return strconv.Itoa(engine.Size()) + " keys\n"
}
