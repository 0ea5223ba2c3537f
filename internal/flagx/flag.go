// Package flagx lets several components share os.Args: each one parses only
// the flags it owns, so the server config, the CLI pipeline selector and the
// launcher can live side by side in one command line.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" or "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// the next token is the value unless it looks like another flag
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// DropArgs is the complement of FilterArgs: it removes the listed flags and
// their values from args and keeps everything else in order. Flags named in
// boolFlags never take a separate value.
func DropArgs(args []string, flags []string, boolFlags []string) []string {
	owned := make(map[string]bool, len(flags)+len(boolFlags))
	for _, f := range flags {
		owned[f] = false
	}
	for _, f := range boolFlags {
		owned[f] = true
	}

	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := owned[name]; !ok {
				kept = append(kept, arg)
			}
			continue
		}

		isBool, ok := owned[arg]
		if !ok {
			kept = append(kept, arg)
			continue
		}
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	return kept
}

// LookupString parses only the given flag names out of args and returns the
// last value seen, or def when none of them is present. Names are given
// without the leading dash, e.g. LookupString(args, "", "p", "pipeline").
func LookupString(args []string, def string, names ...string) string {
	dashed := make([]string, 0, len(names))
	for _, n := range names {
		dashed = append(dashed, "-"+n)
	}

	value := def
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(nopWriter{})
	for _, n := range names {
		fs.StringVar(&value, n, def, "")
	}
	_ = fs.Parse(FilterArgs(args, dashed))

	return value
}

// JsonConfigFlags extracts the config file path provided via the -c or
// -config flags. An empty string means no JSON file should be loaded.
func JsonConfigFlags() string {
	return LookupString(os.Args[1:], "", "c", "config")
}

// EnvFileFlags extracts an explicit .env path provided via -env.
func EnvFileFlags() string {
	return LookupString(os.Args[1:], "", "env")
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
