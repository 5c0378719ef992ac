// cmd/symdiff/main.go — command-line derivative calculator
//
// Usage:
//
//	symdiff [-var x] [-second] [-forms] [-json] 'x^2*sin(x)'
//	echo 'ln(x)' | symdiff
//
// With no expression argument, one expression is read per input line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
)

func main() {
	cfg := config.LoadOrDefault()

	variable := flag.String("var", cfg.Engine.Variable, "Differentiation variable")
	second := flag.Bool("second", cfg.Engine.SecondDerivative, "Also print the second derivative")
	forms := flag.Bool("forms", false, "Print every display form, not just the best")
	asJSON := flag.Bool("json", false, "Print results as JSON lines")
	verbose := flag.Bool("v", false, "Debug logging to stderr")
	flag.Parse()

	logger := logging.NewNop()
	if *verbose {
		logger = logging.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	d := symdiff.NewDeriver(
		symdiff.WithLogger(logger.Logger),
		symdiff.WithMaxPasses(cfg.Engine.MaxPasses),
		symdiff.WithSecondDerivative(*second),
	)
	p := printer{out: os.Stdout, forms: *forms, json: *asJSON}

	failed := false
	if flag.NArg() > 0 {
		failed = !p.print(d.ComputeDerivative(strings.Join(flag.Args(), " "), *variable))
	} else {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if !p.print(d.ComputeDerivative(line, *variable)) {
				failed = true
			}
		}
		if err := sc.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(2)
	}
}

type printer struct {
	out   io.Writer
	forms bool
	json  bool
}

// print writes one result and reports whether it succeeded.
func (p printer) print(res symdiff.Result) bool {
	if p.json {
		out := map[string]interface{}{
			"input":    res.Input,
			"variable": res.Variable,
			"ok":       res.OK(),
			"kind":     res.Kind().String(),
			"message":  res.Message(),
		}
		if res.First != nil {
			out["first"] = res.First
		}
		if res.Second != nil {
			out["second"] = res.Second
		}
		b, err := sonic.Marshal(out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			return false
		}
		fmt.Fprintln(p.out, string(b))
		return res.OK()
	}

	if !res.OK() {
		fmt.Fprintf(p.out, "%s: %s\n", res.Input, res.Message())
		return false
	}
	fmt.Fprintf(p.out, "d/d%s %s = %s\n", res.Variable, res.Input, res.First.Best.Text)
	if p.forms {
		printForms(p.out, res.First)
	}
	if res.Second != nil {
		fmt.Fprintf(p.out, "d²/d%s² %s = %s\n", res.Variable, res.Input, res.Second.Best.Text)
		if p.forms {
			printForms(p.out, res.Second)
		}
	}
	return true
}

func printForms(w io.Writer, f *symdiff.Forms) {
	for _, form := range f.All {
		fmt.Fprintf(w, "  %-10s %s\n", form.Kind, form.Text)
	}
}
