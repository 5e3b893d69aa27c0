// Package flagx lets several loaders share one command line: each picks out
// the flags it owns and ignores the rest.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags together with their
// values. Both "-f value" and "-f=value" forms are recognised; a following
// argument that starts with "-" is never taken as a value.
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

		if strings.HasPrefix(arg, "-") {
			if name, _, ok := strings.Cut(arg, "="); ok {
				if _, keep := allowed[name]; keep {
					filtered = append(filtered, arg)
				}
				continue
			}
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// Value returns the string given to any of names (e.g. "-c", "--config") in
// args. The last occurrence wins; "" means the flag was not given.
func Value(args []string, names ...string) string {
	var v string

	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		name := strings.TrimLeft(n, "-")
		if fs.Lookup(name) == nil {
			fs.StringVar(&v, name, "", "")
		}
	}
	_ = fs.Parse(FilterArgs(args, names))

	return v
}

// JsonConfigFlags returns the JSON config path given with -c or -config.
func JsonConfigFlags() string {
	return Value(os.Args[1:], "-c", "-config", "--config")
}

// EnvFileFlags returns the dotenv path given with -env. An empty string
// means only the process environment is consulted.
func EnvFileFlags() string {
	return Value(os.Args[1:], "-env", "--env")
}
