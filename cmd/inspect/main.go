// Command inspect parses a script literal and reports how the stored value
// converts to each scalar destination.
//
// Usage:
//
//	inspect -expr '42'
//	inspect -expr '{"a": 1, "b": [true, null]}'
//	inspect -i
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hostbridge/script-value/bridge"
	"github.com/hostbridge/script-value/hostobj"
	"github.com/hostbridge/script-value/variant"
	"github.com/hostbridge/script-value/wasmhost"
)

func main() {
	var (
		expr        = flag.String("expr", "", "JSON literal to inspect")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		hostobj.SetLogger(logger)
		wasmhost.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *expr == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -expr <json literal> [-v]")
		fmt.Fprintln(os.Stderr, "       inspect -i")
		fmt.Fprintln(os.Stderr, "")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := inspect(*expr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(expr string) error {
	v, err := bridge.FromJSON([]byte(expr))
	if err != nil {
		return fmt.Errorf("parse literal: %w", err)
	}

	fmt.Printf("Literal:     %s\n", expr)
	fmt.Printf("Stored type: %s\n", describe(v))
	fmt.Printf("Container:   %s\n", containerNote(v))
	fmt.Println()
	fmt.Println("Conversions:")
	for _, r := range matrixRows(v) {
		if r.failed {
			fmt.Printf("  %-12s FAIL  %s\n", r.dest, r.result)
			continue
		}
		fmt.Printf("  %-12s %s\n", r.dest, r.result)
	}
	return nil
}

// row is one destination in the conversion matrix.
type row struct {
	dest   string
	result string
	failed bool
}

func cell[T variant.Scalar](v variant.Value, dest string) row {
	got, err := variant.ConvertCast[T](v)
	if err != nil {
		return row{dest: dest, result: err.Error(), failed: true}
	}
	return row{dest: dest, result: formatScalar(any(got))}
}

func matrixRows(v variant.Value) []row {
	return []row{
		cell[bool](v, "bool"),
		cell[int8](v, "int8"),
		cell[int32](v, "int32"),
		cell[int64](v, "int64"),
		cell[uint8](v, "uint8"),
		cell[uint64](v, "uint64"),
		cell[float32](v, "float32"),
		cell[float64](v, "float64"),
		cell[string](v, "string"),
		cell[variant.WideString](v, "wide string"),
	}
}

func formatScalar(x any) string {
	switch t := x.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case variant.WideString:
		return fmt.Sprintf("%q (%d code points)", string(t), len(t))
	}
	return fmt.Sprintf("%v", x)
}

func describe(v variant.Value) string {
	switch {
	case v.Empty():
		return "empty (nothing assigned)"
	case v.IsNull():
		return "null (deliberate absence)"
	}
	return v.TypeName()
}

func containerNote(v variant.Value) string {
	switch {
	case variant.CanBeSlice(v):
		return "array-like handle"
	case variant.CanBeMap(v):
		return "map-like handle"
	case variant.Is[variant.List](v):
		l, _ := variant.Cast[variant.List](v)
		return fmt.Sprintf("native list, %d elements", len(l))
	case variant.Is[variant.Map](v):
		m, _ := variant.Cast[variant.Map](v)
		return fmt.Sprintf("native map, %d entries", len(m))
	}
	return "none"
}
