package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ropelab/internal/store"
)

var jsonOut string

func storeCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved traces",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "show a saved trace",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run-id]",
		Short: "export a saved trace as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "export a saved trace as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	return []*cobra.Command{listCmd, showCmd, exportJSONCmd, exportCSVCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tBASE\tDIM\tEVENTS\tTOKENS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Base,
			run.Dim,
			run.Events,
			strings.Join(run.Tokens, ","),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("base: %g  dim: %d\n", meta.Base, meta.Dim)
	fmt.Printf("events: %d\n", len(trace))
	for k, v := range meta.Metrics {
		fmt.Printf("%s: %g\n", k, v)
	}
	fmt.Println()

	for _, label := range meta.Tokens {
		var progress []float64
		for _, ev := range trace {
			if ev.Label != label {
				continue
			}
			total := 0
			for _, m := range ev.Multipliers {
				total += m
			}
			progress = append(progress, float64(total))
		}
		if len(progress) < 2 {
			continue
		}
		graph := asciigraph.Plot(progress,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(label+": steps applied"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	if jsonOut != "" {
		if err := st.ExportJSONFile(jsonOut, args[0]); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonOut)
		return nil
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).ExportCSV(os.Stdout, args[0])
}
