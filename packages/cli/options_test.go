package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("curlew", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func testResolver(opts ...ResolverOption) *Resolver {
	base := []ResolverOption{
		WithEnviron(func() []string { return nil }),
		WithTerminalCheck(func() bool { return false }),
	}
	return NewResolver(append(base, opts...)...)
}

func TestResolveDefaults(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultConnectTimeout, opts.ConnectTimeout)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	require.NotNil(t, opts.MaxRedirect)
	assert.Equal(t, DefaultMaxRedirect, *opts.MaxRedirect)
	assert.Nil(t, opts.ToEntry)
	assert.True(t, opts.FailFast)
	assert.False(t, opts.Color)
	assert.Equal(t, OutputResponseBody, opts.OutputType)
	assert.Empty(t, opts.Variables)
	assert.Empty(t, opts.GlobFiles)
}

func TestResolveMaxRedirect(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *int
		wantErr  string
	}{
		{name: "absent defaults to 50", args: nil, expected: intPtr(50)},
		{name: "minus one means unlimited", args: []string{"--max-redirs", "-1"}, expected: nil},
		{name: "explicit count", args: []string{"--max-redirs", "7"}, expected: intPtr(7)},
		{name: "zero is allowed", args: []string{"--max-redirs", "0"}, expected: intPtr(0)},
		{name: "junk is rejected", args: []string{"--max-redirs", "lots"}, wantErr: "invalid number"},
		{name: "other negatives rejected", args: []string{"--max-redirs", "-2"}, wantErr: "invalid number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := testResolver().Resolve(parseFlags(t, tt.args...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts.MaxRedirect)
		})
	}
}

func intPtr(n int) *int { return &n }

func TestResolveTimeouts(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t, "--connect-timeout", "10", "--max-time", "120"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, opts.ConnectTimeout)
	assert.Equal(t, 120*time.Second, opts.Timeout)

	_, err = testResolver().Resolve(parseFlags(t, "--connect-timeout", "fast"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "--connect-timeout")

	_, err = testResolver().Resolve(parseFlags(t, "--max-time", "-3"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "--max-time")
}

func TestResolveColor(t *testing.T) {
	onTTY := testResolver(WithTerminalCheck(func() bool { return true }))
	offTTY := testResolver(WithTerminalCheck(func() bool { return false }))

	opts, err := offTTY.Resolve(parseFlags(t, "--color"))
	require.NoError(t, err)
	assert.True(t, opts.Color)

	opts, err = onTTY.Resolve(parseFlags(t, "--no-color"))
	require.NoError(t, err)
	assert.False(t, opts.Color)

	opts, err = onTTY.Resolve(parseFlags(t))
	require.NoError(t, err)
	assert.True(t, opts.Color)

	opts, err = offTTY.Resolve(parseFlags(t))
	require.NoError(t, err)
	assert.False(t, opts.Color)
}

func TestResolveCACert(t *testing.T) {
	cert := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(cert, []byte("dummy"), 0o644))

	opts, err := testResolver().Resolve(parseFlags(t, "--cacert", cert))
	require.NoError(t, err)
	assert.Equal(t, cert, opts.CACertFile)

	missing := filepath.Join(t.TempDir(), "nope.pem")
	_, err = testResolver().Resolve(parseFlags(t, "--cacert", missing))
	require.Error(t, err)
	assert.ErrorContains(t, err, missing)
	assert.ErrorContains(t, err, "does not exist")

	// a directory is not a regular file
	_, err = testResolver().Resolve(parseFlags(t, "--cacert", t.TempDir()))
	assert.Error(t, err)
}

func TestResolveReportDir(t *testing.T) {
	// missing directory is created, one level only
	dir := filepath.Join(t.TempDir(), "report")
	opts, err := testResolver().Resolve(parseFlags(t, "--report-html", dir))
	require.NoError(t, err)
	assert.Equal(t, dir, opts.HTMLDir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directory is reused
	_, err = testResolver().Resolve(parseFlags(t, "--report-html", dir))
	require.NoError(t, err)

	// missing parent fails
	_, err = testResolver().Resolve(parseFlags(t, "--report-html", filepath.Join(t.TempDir(), "a", "b")))
	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot be created")

	// existing non-directory fails
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = testResolver().Resolve(parseFlags(t, "--report-html", file))
	require.Error(t, err)
	assert.ErrorContains(t, err, "not a valid directory")
}

func TestResolveOutputType(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t, "--json"))
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, opts.OutputType)

	opts, err = testResolver().Resolve(parseFlags(t, "--no-output"))
	require.NoError(t, err)
	assert.Equal(t, OutputNone, opts.OutputType)

	opts, err = testResolver().Resolve(parseFlags(t, "--test"))
	require.NoError(t, err)
	assert.Equal(t, OutputNone, opts.OutputType)
}

func TestResolveTestModeImplications(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t, "--test"))
	require.NoError(t, err)
	assert.Equal(t, OutputNone, opts.OutputType)
	assert.True(t, opts.Progress)
	assert.True(t, opts.Summary)
}

func TestResolveFailFast(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t))
	require.NoError(t, err)
	assert.True(t, opts.FailFast)

	opts, err = testResolver().Resolve(parseFlags(t, "--fail-at-end"))
	require.NoError(t, err)
	assert.False(t, opts.FailFast)
}

func TestResolveInteractiveImpliesVerbose(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t, "--interactive"))
	require.NoError(t, err)
	assert.True(t, opts.Interactive)
	assert.True(t, opts.Verbose)
}

func TestResolveToEntry(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t, "--to-entry", "3"))
	require.NoError(t, err)
	require.NotNil(t, opts.ToEntry)
	assert.Equal(t, 3, *opts.ToEntry)

	_, err = testResolver().Resolve(parseFlags(t, "--to-entry", "0"))
	assert.ErrorContains(t, err, "--to-entry")

	_, err = testResolver().Resolve(parseFlags(t, "--to-entry", "first"))
	assert.ErrorContains(t, err, "--to-entry")
}

func TestResolveNoProxyMirrorsProxy(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t,
		"--proxy", "http://proxy.local:3128",
		"--noproxy", "internal.example.org"))
	require.NoError(t, err)

	assert.Equal(t, "http://proxy.local:3128", opts.Proxy)
	// NoProxy carries the --proxy value, not the --noproxy one
	assert.Equal(t, "http://proxy.local:3128", opts.NoProxy)
}

func TestResolvePassThroughOptions(t *testing.T) {
	opts, err := testResolver().Resolve(parseFlags(t,
		"--user", "alice:secret",
		"--user-agent", "curlew-test",
		"--cookie", "in.txt",
		"--cookie-jar", "out.txt",
		"--report-junit", "report.xml",
		"--file-root", "/srv/data",
		"--output", "body.bin"))
	require.NoError(t, err)

	assert.Equal(t, "alice:secret", opts.User)
	assert.Equal(t, "curlew-test", opts.UserAgent)
	assert.Equal(t, "in.txt", opts.CookieInputFile)
	assert.Equal(t, "out.txt", opts.CookieOutputFile)
	assert.Equal(t, "report.xml", opts.JUnitFile)
	assert.Equal(t, "/srv/data", opts.FileRoot)
	assert.Equal(t, "body.bin", opts.Output)
}

func TestResolveGlobFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a1.curlew", "a2.curlew", "b1.curlew"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	opts, err := testResolver().Resolve(parseFlags(t,
		"--glob", filepath.Join(dir, "a*.curlew"),
		"--glob", filepath.Join(dir, "b*.curlew")))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a1.curlew"),
		filepath.Join(dir, "a2.curlew"),
		filepath.Join(dir, "b1.curlew"),
	}, opts.GlobFiles)
}

func TestResolveVariablesFromAllSources(t *testing.T) {
	varsFile := filepath.Join(t.TempDir(), "vars.properties")
	require.NoError(t, os.WriteFile(varsFile, []byte("name=from-file\n"), 0o644))

	r := testResolver(WithEnviron(func() []string {
		return []string{"CURLEW_name=from-env", "CURLEW_region=eu"}
	}))

	opts, err := r.Resolve(parseFlags(t,
		"--variables-file", varsFile,
		"--variable", "name=from-inline"))
	require.NoError(t, err)

	assert.Equal(t, StringValue("from-inline"), opts.Variables["name"])
	assert.Equal(t, StringValue("eu"), opts.Variables["region"])
}

func TestResolveEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOKEN=abc123\n"), 0o644))

	opts, err := testResolver().Resolve(parseFlags(t, "--env-file", envFile))
	require.NoError(t, err)
	assert.Equal(t, StringValue("abc123"), opts.Variables["TOKEN"])

	// inline still wins over the env file
	opts, err = testResolver().Resolve(parseFlags(t,
		"--env-file", envFile, "--variable", "TOKEN=so-secret"))
	require.NoError(t, err)
	assert.Equal(t, StringValue("so-secret"), opts.Variables["TOKEN"])

	_, err = testResolver().Resolve(parseFlags(t, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	assert.Error(t, err)
}
