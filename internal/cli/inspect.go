package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/housepricer/dataset"
)

// requiredColumns are checked by inspect. Floor Size is reported but not used
// by the model.
var requiredColumns = []string{
	dataset.ColBedrooms, dataset.ColBathrooms, "Floor Size", dataset.ColErfSize, dataset.ColPropertyType,
}

// topValues is the number of value counts printed per text column.
const topValues = 10

func newInspectCmd(st *state) *cobra.Command {
	var trainPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Check the columns of the training CSV and print a short profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("train") {
				st.cfg.TrainPath = trainPath
			}
			frame, err := dataset.ReadCSV(st.cfg.TrainPath)
			if err != nil {
				return err
			}
			inspectFrame(cmd.OutOrStdout(), frame)
			return nil
		},
	}
	cmd.Flags().StringVar(&trainPath, "train", "", "training CSV (overrides config)")
	return cmd
}

func inspectFrame(w io.Writer, f *dataset.Frame) {
	fmt.Fprintln(w, "--- Column Check ---")
	for _, col := range requiredColumns {
		status := "MISSING"
		if f.Has(col) {
			status = "FOUND"
		}
		fmt.Fprintf(w, "'%s': %s\n", col, status)
	}
	fmt.Fprintf(w, "\nAll columns: [%s]\n", strings.Join(quoteAll(f.Columns()), ", "))
	fmt.Fprintf(w, "Rows: %d\n", f.Len())

	fmt.Fprintln(w, "\n--- Missing Values ---")
	for _, col := range f.Columns() {
		cells, _ := f.Column(col)
		n := 0
		for _, c := range cells {
			if dataset.IsNA(c) {
				n++
			}
		}
		fmt.Fprintf(w, "%-20s %d\n", col, n)
	}

	fmt.Fprintln(w, "\n--- Object Columns ---")
	for _, col := range f.Columns() {
		cells, _ := f.Column(col)
		if isNumericColumn(cells) {
			continue
		}
		fmt.Fprintf(w, "\nValue Counts for %s:\n", col)
		for _, vc := range valueCounts(cells, topValues) {
			fmt.Fprintf(w, "%-30s %d\n", vc.value, vc.count)
		}
	}
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "'" + s + "'"
	}
	return out
}

// isNumericColumn reports whether every present cell parses as a number.
func isNumericColumn(cells []string) bool {
	for _, c := range cells {
		if dataset.IsNA(c) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err != nil {
			return false
		}
	}
	return true
}

type valueCount struct {
	value string
	count int
}

// valueCounts returns the n most frequent present values, ties broken by value.
func valueCounts(cells []string, n int) []valueCount {
	counts := map[string]int{}
	for _, c := range cells {
		if !dataset.IsNA(c) {
			counts[c]++
		}
	}
	out := make([]valueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, valueCount{v, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].value < out[j].value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
