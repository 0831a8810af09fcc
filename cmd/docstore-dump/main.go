// Command docstore-dump inspects a docstore file without modifying it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/andreyvit/docstore"
	"github.com/jessevdk/go-flags"
)

var Config = new(struct {
	Path    string `short:"f" long:"file" required:"true" description:"Path to the store file"`
	Verbose bool   `short:"v" long:"verbose" description:"Log store operations to stderr"`
})

type cmdDump struct {
	Rows    bool `long:"rows" description:"Include documents"`
	Index   bool `long:"index" description:"Include secondary index entries"`
	Stats   bool `long:"stats" description:"Include region sizes"`
	NoHeads bool `long:"no-headers" description:"Omit region headers"`
}

func (cmd *cmdDump) Execute([]string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var f docstore.DumpFlags
	if !cmd.NoHeads {
		f |= docstore.DumpRegionHeaders
	}
	if cmd.Rows {
		f |= docstore.DumpRows
	}
	if cmd.Index {
		f |= docstore.DumpIndexRows
	}
	if cmd.Stats {
		f |= docstore.DumpStats
	}
	return db.Dump(os.Stdout, f)
}

type cmdStats struct{}

func (cmd *cmdStats) Execute([]string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.AllRegionStats()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tOWNER\tROLE\tKEYS\tSIZE\tALLOC")
	for _, rs := range stats {
		fmt.Fprintf(w, "%v\t%s\t%s\t%d\t%d\t%d\n", rs.ID, orDash(rs.Owner), orDash(rs.Role), rs.Keys, rs.Size, rs.Alloc)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func openStore() (*docstore.DB, error) {
	if _, err := os.Stat(Config.Path); err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return docstore.Open(Config.Path, docstore.Options{
		ReadOnly: true,
		Verbose:  Config.Verbose,
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
}

func main() {
	parser := flags.NewParser(Config, flags.Default)

	_, err := parser.AddCommand("dump", "Dump regions",
		"Print every used region with its owner and, optionally, its contents", &cmdDump{})
	must(err, "failed to add dump command")

	_, err = parser.AddCommand("stats", "Show region statistics",
		"Print one line per used region with its owner and size", &cmdStats{})
	must(err, "failed to add stats command")

	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func must(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(2)
	}
}
