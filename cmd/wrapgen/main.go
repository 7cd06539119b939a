package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/wherewhere/wrapgen"
	"github.com/wherewhere/wrapgen/catalog"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/synth"
)

var Version = "dev"

var (
	pFlag       = flag.String("p", ".", "target package pattern")
	nFlag       = flag.String("n", "", "generated package name (default: the target package name)")
	oFlag       = flag.String("o", "wrapgen_gen.go", "output file name")
	cFlag       = flag.String("c", "auto", "colorize (auto|always|never)")
	disposeFlag = flag.Bool("dispose", false, "patch Close on disposable targets to suppress finalizers")
	tokensFlag  = flag.Bool("tokens", false, "use registration tokens for native events")
)

func init() {
	wrapgen.Version = Version
}

func main() {
	flag.Parse()

	color := false
	switch *cFlag {
	case "auto":
		color = isatty()
	case "always":
		color = true
	case "never":
		color = false
	default:
		fmt.Fprintln(os.Stderr, "invalid -c value:", *cFlag)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: wrapgen [flags] Type[=WrapperName]...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	code, diags, err := run(flag.Args())
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if err != nil {
		message := err.Error()
		if color {
			message = colorize(message)
		}
		fmt.Fprintln(os.Stderr, message)
		os.Exit(1)
	}

	out := *oFlag
	if out == "-" {
		os.Stdout.Write(code)
		return
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if wd, err := os.Getwd(); err == nil {
		if relOut, err := filepath.Rel(wd, out); err == nil {
			out = relOut
		}
	}
	fmt.Println("Generated:", out)
}

// run generates the wrapper file for every Type[=WrapperName] argument. The
// wrappers land in the target package itself unless -n renames it.
func run(args []string) ([]byte, []synth.Diagnostic, error) {
	c, err := catalog.Load(*pFlag)
	if err != nil {
		return nil, nil, err
	}

	pkg := c.Package()
	pkgName := pkg.Name
	if *nFlag != "" {
		pkgName = *nFlag
	}

	g := wrapgen.New(pkg.PkgPath, pkgName, pkg.Fset, nil, synth.Policy{
		PatchDispose:      *disposeFlag,
		NativeEventTokens: *tokensFlag,
	})

	decls := make([]*matching.Decl, 0, flag.NArg())
	for _, arg := range args {
		typeName, wrapperName, ok := strings.Cut(arg, "=")
		if !ok {
			wrapperName = typeName + "Wrapper"
		}

		desc, err := c.Describe(typeName)
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, &matching.Decl{
			Target: desc,
			Name:   wrapperName,
			Mode:   matching.ModeAll,
		})
	}

	return g.Generate(decls)
}

// isatty reports whether the program is running in a terminal. If it is true,
// we can use ANSI color codes.
func isatty() bool {
	_, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	return err == nil
}

var (
	reTab  = regexp.MustCompile(`(?m)^\t.+`)
	reFail = regexp.MustCompile(`^\tFAIL:.+`)
)

// colorize adds ANSI color codes to the message.
func colorize(message string) string {
	const (
		red   = "\033[31m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)
	m := []byte(message)
	m = reTab.ReplaceAllFunc(m, func(b []byte) []byte {
		if reFail.Match(b) {
			return []byte(red + string(b) + reset)
		}
		return []byte(dim + string(b) + reset)
	})
	return string(m)
}
