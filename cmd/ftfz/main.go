// ftfz — record and inspect Fuchsia Trace Format traces.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoobzio/ftfz"
	"github.com/zoobzio/ftfz/ftf"
)

// version is set by ldflags at build time.
var version = "dev"

var (
	demoOut    string
	demoConfig string
)

var rootCmd = &cobra.Command{
	Use:     "ftfz",
	Short:   "Record and inspect FTF traces",
	Version: version,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an instrumented workload and write its trace",
	Long: "Runs a small workload through the tracer: a default-category span,\n" +
		"a custom-category span with inherited and overridden event categories,\n" +
		"a self-captured event under an uncaptured span, and a standalone event.",
	RunE: runDemo,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Decode a trace file and print its records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(dumpCmd)
	demoCmd.Flags().StringVarP(&demoOut, "out", "o", "trace.ftf", "Output trace file")
	demoCmd.Flags().StringVar(&demoConfig, "config", "", "YAML config file (provider_id, provider_name, process_id)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	var cfg ftfz.Config
	if demoConfig != "" {
		loaded, err := ftfz.LoadConfig(demoConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	f, err := os.Create(demoOut)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	layer := ftfz.NewWithConfig(f, cfg)
	tracer := ftfz.NewTracer(layer)
	ctx := context.Background()

	// Captured span using the default category.
	sctx, startup := tracer.StartSpan(ctx, "startup", ftfz.Capture(), ftfz.Int64("id", 123))
	tracer.Event(sctx, "configured", ftfz.Float64("value", 42.5))
	startup.Finish()

	// Captured span with a custom category; first event inherits it, the
	// second overrides with its own.
	rctx, render := tracer.StartSpan(ctx, "render", ftfz.Capture(), ftfz.Category("rendering"), ftfz.String("surface", "main"))
	tracer.Event(rctx, "frame", ftfz.Int64("number", 1))
	tracer.Event(rctx, "flush", ftfz.Capture(), ftfz.Category("io"))
	render.Finish()

	// Uncaptured span: no begin/end records, but the event opts itself in.
	uctx, background := tracer.StartSpan(ctx, "background", ftfz.Int64("id", 789))
	tracer.Event(uctx, "poll", ftfz.Capture(), ftfz.Category("networking"))
	background.Finish()

	// Standalone event outside any span.
	tracer.Event(ctx, "shutdown", ftfz.Capture(), ftfz.Category("standalone"))

	fmt.Printf("wrote %s\n", demoOut)
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	d := dumper{
		out:     cmd.OutOrStdout(),
		strings: make(map[uint16]string),
		threads: make(map[uint8][2]uint64),
	}

	r := ftf.NewReader(f)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode trace: %w", err)
		}
		d.print(rec)
	}
}

// dumper resolves interned references while printing records in order.
type dumper struct {
	out     io.Writer
	strings map[uint16]string
	threads map[uint8][2]uint64
}

func (d *dumper) print(rec ftf.Record) {
	switch r := rec.(type) {
	case ftf.MagicRecord:
		fmt.Fprintln(d.out, "magic")
	case ftf.ProviderInfoRecord:
		fmt.Fprintf(d.out, "provider id=%d name=%q\n", r.ID, r.Name)
	case ftf.StringRecord:
		d.strings[r.Index] = r.Value
		fmt.Fprintf(d.out, "string  id=%d value=%q\n", r.Index, r.Value)
	case ftf.ThreadRecord:
		d.threads[r.Index] = [2]uint64{r.Process, r.Thread}
		fmt.Fprintf(d.out, "thread  id=%d process=%d thread=%d\n", r.Index, r.Process, r.Thread)
	case ftf.EventRecord:
		fmt.Fprintf(d.out, "%-7s ts=%d thread=%s category=%q name=%q",
			eventName(r.Type), r.Timestamp, d.thread(r.Thread), d.str(r.Category), d.str(r.Name))
		for _, a := range r.Args {
			fmt.Fprintf(d.out, " %s=%s", d.str(a.Name), d.arg(a))
		}
		fmt.Fprintln(d.out)
	}
}

func (d *dumper) str(ref ftf.StringRef) string {
	if ref.Inline {
		return ref.Value
	}
	if ref.Index == 0 {
		return ""
	}
	if v, ok := d.strings[ref.Index]; ok {
		return v
	}
	return fmt.Sprintf("<string %d>", ref.Index)
}

func (d *dumper) thread(ref ftf.ThreadRef) string {
	if ref.Inline {
		return fmt.Sprintf("%d/%d", ref.Process, ref.Thread)
	}
	if id, ok := d.threads[ref.Index]; ok {
		return fmt.Sprintf("%d/%d", id[0], id[1])
	}
	return fmt.Sprintf("<thread %d>", ref.Index)
}

func (d *dumper) arg(a ftf.Argument) string {
	switch a.Kind {
	case ftf.ArgString:
		return fmt.Sprintf("%q", d.str(a.Str))
	case ftf.ArgInt64:
		return fmt.Sprintf("%d", a.Int)
	case ftf.ArgUint64:
		return fmt.Sprintf("%d", a.Uint)
	case ftf.ArgBool:
		return fmt.Sprintf("%t", a.Bool)
	case ftf.ArgFloat64:
		return fmt.Sprintf("%g", a.Float)
	default:
		return "<unknown>"
	}
}

func eventName(t ftf.EventType) string {
	switch t {
	case ftf.EventDurationBegin:
		return "begin"
	case ftf.EventDurationEnd:
		return "end"
	case ftf.EventInstant:
		return "instant"
	default:
		return fmt.Sprintf("event<%d>", t)
	}
}
