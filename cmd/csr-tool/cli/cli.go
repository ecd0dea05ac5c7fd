package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/metricskey"
	"github.com/effective-security/metrics"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/x/print"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/csrkit", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version  ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`
	Debug    bool            `short:"D" help:"Enable debug mode"`
	LogLevel string          `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`
	Metrics  bool            `help:"Print metrics of key and CSR operations to stderr"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	sink          *metrics.InmemSink
	metricsConfig *metrics.Config
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// AfterApply hook sets the log level and metrics sink
func (c *Cli) AfterApply(_ *kong.Kong, _ kong.Vars) error {
	if c.Metrics {
		if err := c.initMetrics(); err != nil {
			return err
		}
	}
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
		return nil
	}
	val := strings.TrimLeft(c.LogLevel, "=")
	if val == "" {
		val = "error"
	}
	l, err := xlog.ParseLevel(strings.ToUpper(val))
	if err != nil {
		return errors.WithStack(err)
	}
	xlog.SetGlobalLogLevel(l)
	return nil
}

func (c *Cli) initMetrics() error {
	c.metricsConfig = &metrics.Config{
		TimerGranularity: time.Millisecond,
		FilterDefault:    true,
	}
	c.sink = metrics.NewInmemSink(time.Minute, time.Minute)
	_, err := metrics.NewGlobal(c.metricsConfig, c.sink)
	if err != nil {
		return errors.WithMessage(err, "unable to initialize metrics")
	}
	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) {
	print.JSON(c.Writer(), value)
}

// WriteObject prints response to out in the format: json or yaml
func (c *Cli) WriteObject(format string, value any) {
	print.Object(c.Writer(), format, value)
}

// PrintMetrics prints the samples collected with --metrics to the error writer
func (c *Cli) PrintMetrics() {
	if c.sink == nil {
		return
	}
	samples := map[string]string{}
	for _, intv := range c.sink.Data() {
		intv.RLock()
		for k, v := range intv.Samples {
			samples[k] = fmt.Sprintf("count=%d mean=%.3fms", v.Count, v.AggregateSample.Mean())
		}
		intv.RUnlock()
	}
	print.Map(c.ErrWriter(), []string{"Metric", "Value"}, samples)
	print.Map(c.ErrWriter(), []string{"Metric", "Description"}, c.metricsConfig.Help(metricskey.Metrics))
}

// ReadFile reads from stdin if the file is "-"
func (c *Cli) ReadFile(filename string) ([]byte, error) {
	if filename == "" {
		return nil, errors.New("empty file name")
	}
	if filename == "-" {
		return io.ReadAll(c.Reader())
	}
	return os.ReadFile(filename)
}

// ReadPassphrase returns the passphrase from the value,
// or from the file with trailing end-of-line removed
func (c *Cli) ReadPassphrase(value, file string) ([]byte, error) {
	if value != "" {
		return []byte(value), nil
	}
	if file == "" {
		return nil, errors.New("passphrase is required, use --passphrase or --passphrase-file")
	}
	b, err := c.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to read passphrase")
	}
	b = []byte(strings.TrimRight(string(b), "\r\n"))
	if len(b) == 0 {
		return nil, errors.Errorf("empty passphrase in %s", file)
	}
	return b, nil
}
