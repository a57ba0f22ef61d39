package cli

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

// OutputType selects what the runner emits for each executed file.
type OutputType int

const (
	OutputResponseBody OutputType = iota
	OutputJSON
	OutputNone
)

// Options is the resolved runner configuration. It is built once per
// invocation by Resolver.Resolve and read-only afterwards.
type Options struct {
	CACertFile       string
	Color            bool
	Compressed       bool
	ConnectTimeout   time.Duration
	CookieInputFile  string
	CookieOutputFile string
	FailFast         bool
	FileRoot         string
	FollowLocation   bool
	GlobFiles        []string
	HTMLDir          string
	IgnoreAsserts    bool
	Include          bool
	Insecure         bool
	Interactive      bool
	JUnitFile        string
	MaxRedirect      *int // nil means unlimited
	NoProxy          string
	Output           string
	OutputType       OutputType
	Progress         bool
	Proxy            string
	Summary          bool
	Timeout          time.Duration
	ToEntry          *int // 1-based, nil means run every entry
	User             string
	UserAgent        string
	Variables        map[string]Value
	Verbose          bool
}

// Resolver validates flags and assembles Options. Environment access,
// terminal detection and filesystem probes are injectable for tests.
type Resolver struct {
	environ          func() []string
	isStdoutTerminal func() bool
	stat             func(string) (os.FileInfo, error)
	mkdir            func(string, fs.FileMode) error
}

type ResolverOption func(*Resolver)

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		environ: os.Environ,
		isStdoutTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd())
		},
		stat:  os.Stat,
		mkdir: os.Mkdir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithEnviron(fn func() []string) ResolverOption {
	return func(r *Resolver) {
		r.environ = fn
	}
}

func WithTerminalCheck(fn func() bool) ResolverOption {
	return func(r *Resolver) {
		r.isStdoutTerminal = fn
	}
}

func WithStat(fn func(string) (os.FileInfo, error)) ResolverOption {
	return func(r *Resolver) {
		r.stat = fn
	}
}

func WithMkdir(fn func(string, fs.FileMode) error) ResolverOption {
	return func(r *Resolver) {
		r.mkdir = fn
	}
}

// RegisterFlags declares every runner flag on the given flag set. The
// mutually exclusive pairs (--json/--no-output, --color/--no-color,
// --interactive/--to-entry) are declared at the command layer so conflicts
// are rejected before resolution runs.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("cacert", "", "CA certificate to verify peer against (PEM format)")
	flags.Bool("color", false, "Colorize output")
	flags.Bool("compressed", false, "Request a compressed response (deflate or gzip)")
	flags.String("connect-timeout", "", "Maximum time in seconds allowed for connection")
	flags.StringP("cookie", "b", "", "Read cookies from FILE")
	flags.StringP("cookie-jar", "c", "", "Write cookies to FILE after running the session")
	flags.String("env-file", "", "Load additional variables from a dotenv FILE")
	flags.Bool("fail-at-end", false, "Keep executing remaining files after a failure")
	flags.String("file-root", "", "Root directory for file imports (default is the current directory)")
	flags.StringArray("glob", nil, "Input files matching the given glob (repeatable)")
	flags.Bool("ignore-asserts", false, "Ignore asserts defined in the input files")
	flags.BoolP("include", "i", false, "Include response headers in the output")
	flags.BoolP("insecure", "k", false, "Allow insecure TLS connections")
	flags.Bool("interactive", false, "Pause before executing each entry")
	flags.Bool("json", false, "Output each file result as JSON")
	flags.BoolP("location", "L", false, "Follow redirects")
	flags.String("max-redirs", "", "Maximum number of redirects allowed (-1 for unlimited)")
	flags.StringP("max-time", "m", "", "Maximum time in seconds allowed for the transfer")
	flags.Bool("no-color", false, "Do not colorize output")
	flags.Bool("no-output", false, "Suppress response output")
	flags.String("noproxy", "", "Comma-separated hosts that bypass the proxy")
	flags.StringP("output", "o", "", "Write output to FILE instead of stdout")
	flags.Bool("progress", false, "Print filename and status for each entry (stderr)")
	flags.StringP("proxy", "x", "", "Use proxy on [protocol://]host[:port]")
	flags.String("report-html", "", "Write an HTML report into DIR")
	flags.String("report-junit", "", "Write a JUnit XML report to FILE")
	flags.Bool("summary", false, "Print run metrics at the end (stderr)")
	flags.Bool("test", false, "Test mode; same as --no-output --progress --summary")
	flags.String("to-entry", "", "Execute files up to entry number (1-based)")
	flags.StringP("user", "u", "", "Basic authentication as user:password")
	flags.StringP("user-agent", "A", "", "User-Agent header to send")
	flags.StringArray("variable", nil, "Define a variable as name=value (repeatable)")
	flags.String("variables-file", "", "Load variables from a properties FILE")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("watch", "w", false, "Watch input files and re-run on change")
}

// Resolve builds Options from the parsed flag set. Any validation failure
// aborts the whole resolution; a partially populated Options value is never
// returned.
func (r *Resolver) Resolve(flags *pflag.FlagSet) (*Options, error) {
	cacert, _ := flags.GetString("cacert")
	if cacert != "" {
		info, err := r.stat(cacert)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("file %s does not exist", cacert)
		}
	}

	connectTimeout, err := resolveSeconds(flags, "connect-timeout", DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	timeout, err := resolveSeconds(flags, "max-time", DefaultTimeout)
	if err != nil {
		return nil, err
	}

	globPatterns, _ := flags.GetStringArray("glob")
	globFiles, err := ExpandGlobs(globPatterns)
	if err != nil {
		return nil, err
	}

	htmlDir, _ := flags.GetString("report-html")
	if htmlDir != "" {
		if err := r.ensureReportDir(htmlDir); err != nil {
			return nil, err
		}
	}

	maxRedirect, err := resolveMaxRedirect(flags)
	if err != nil {
		return nil, err
	}

	toEntry, err := resolveToEntry(flags)
	if err != nil {
		return nil, err
	}

	variables, err := r.resolveVariables(flags)
	if err != nil {
		return nil, err
	}

	testMode, _ := flags.GetBool("test")
	jsonOutput, _ := flags.GetBool("json")
	noOutput, _ := flags.GetBool("no-output")
	outputType := OutputResponseBody
	switch {
	case jsonOutput:
		outputType = OutputJSON
	case noOutput || testMode:
		outputType = OutputNone
	}

	compressed, _ := flags.GetBool("compressed")
	cookieInput, _ := flags.GetString("cookie")
	cookieOutput, _ := flags.GetString("cookie-jar")
	failAtEnd, _ := flags.GetBool("fail-at-end")
	fileRoot, _ := flags.GetString("file-root")
	followLocation, _ := flags.GetBool("location")
	ignoreAsserts, _ := flags.GetBool("ignore-asserts")
	include, _ := flags.GetBool("include")
	insecure, _ := flags.GetBool("insecure")
	interactive, _ := flags.GetBool("interactive")
	junitFile, _ := flags.GetString("report-junit")
	output, _ := flags.GetString("output")
	progress, _ := flags.GetBool("progress")
	proxy, _ := flags.GetString("proxy")
	summary, _ := flags.GetBool("summary")
	user, _ := flags.GetString("user")
	userAgent, _ := flags.GetString("user-agent")
	verbose, _ := flags.GetBool("verbose")

	return &Options{
		CACertFile:       cacert,
		Color:            r.resolveColor(flags),
		Compressed:       compressed,
		ConnectTimeout:   connectTimeout,
		CookieInputFile:  cookieInput,
		CookieOutputFile: cookieOutput,
		FailFast:         !failAtEnd,
		FileRoot:         fileRoot,
		FollowLocation:   followLocation,
		GlobFiles:        globFiles,
		HTMLDir:          htmlDir,
		IgnoreAsserts:    ignoreAsserts,
		Include:          include,
		Insecure:         insecure,
		Interactive:      interactive,
		JUnitFile:        junitFile,
		MaxRedirect:      maxRedirect,
		// NoProxy deliberately mirrors the --proxy value; the --noproxy
		// flag is accepted but not consumed here. Changing this breaks a
		// documented contract, see DESIGN.md.
		NoProxy:    proxy,
		Output:     output,
		OutputType: outputType,
		Progress:   progress || testMode,
		Proxy:      proxy,
		Summary:    summary || testMode,
		Timeout:    timeout,
		ToEntry:    toEntry,
		User:       user,
		UserAgent:  userAgent,
		Variables:  variables,
		Verbose:    verbose || interactive,
	}, nil
}

// resolveColor: an explicit --color wins, then an explicit --no-color,
// otherwise color is on iff stdout is a terminal.
func (r *Resolver) resolveColor(flags *pflag.FlagSet) bool {
	if on, _ := flags.GetBool("color"); on {
		return true
	}
	if off, _ := flags.GetBool("no-color"); off {
		return false
	}
	return r.isStdoutTerminal()
}

// ensureReportDir creates exactly one missing directory level, reuses an
// existing directory and rejects anything else.
func (r *Resolver) ensureReportDir(dir string) error {
	info, err := r.stat(dir)
	if err != nil {
		if mkErr := r.mkdir(dir, 0o755); mkErr != nil {
			return fmt.Errorf("directory %s cannot be created: %w", dir, mkErr)
		}
		return nil
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a valid directory", dir)
	}
	return nil
}

func (r *Resolver) resolveVariables(flags *pflag.FlagSet) (map[string]Value, error) {
	environ := r.environ()

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		extra, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read env file %s: %w", envFile, err)
		}
		names := make([]string, 0, len(extra))
		for name := range extra {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			environ = append(environ, EnvPrefix+name+"="+extra[name])
		}
	}

	variablesFile, _ := flags.GetString("variables-file")
	inline, _ := flags.GetStringArray("variable")
	return MergeVariables(environ, variablesFile, inline)
}

func resolveSeconds(flags *pflag.FlagSet, name string, fallback time.Duration) (time.Duration, error) {
	raw, _ := flags.GetString(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q for option --%s", raw, name)
	}
	return time.Duration(n) * time.Second, nil
}

func resolveMaxRedirect(flags *pflag.FlagSet) (*int, error) {
	raw, _ := flags.GetString("max-redirs")
	switch raw {
	case "":
		n := DefaultMaxRedirect
		return &n, nil
	case "-1":
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q for option --max-redirs", raw)
	}
	limit := int(n)
	return &limit, nil
}

func resolveToEntry(flags *pflag.FlagSet) (*int, error) {
	raw, _ := flags.GetString("to-entry")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("invalid value %q for option --to-entry: must be a positive integer", raw)
	}
	return &n, nil
}
