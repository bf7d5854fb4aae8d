package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/housepricer/pipeline"
)

func newTrainCmd(st *state) *cobra.Command {
	var (
		trainPath, testPath, modelPath, plotPath, regressor string
		alpha, testSize                                     float64
		seed                                                int64
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model and write the artifact",
		Long:  `Loads the train and test CSVs, cleans them, fits the feature pipeline and the regressor, evaluates it and saves a single JSON artifact. When the test CSV has no Price column the training set is split 80/20 for evaluation.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			c := st.cfg
			if f.Changed("train") {
				c.TrainPath = trainPath
			}
			if f.Changed("test") {
				c.TestPath = testPath
			}
			if f.Changed("model") {
				c.ModelPath = modelPath
			}
			if f.Changed("plot") {
				c.PlotPath = plotPath
			}
			if f.Changed("regressor") {
				c.Regressor = regressor
			}
			if f.Changed("alpha") {
				c.Alpha = alpha
			}
			if f.Changed("test-size") {
				c.TestSize = testSize
			}
			if f.Changed("seed") {
				c.Seed = seed
			}
			if err := c.Validate(); err != nil {
				return err
			}

			res, err := pipeline.Run(cmd.Context(), c.RunConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Split {
				fmt.Fprintln(out, "No Price column in test set. Evaluated on a held-out split of the training set.")
			}
			fmt.Fprintln(out, "--- Evaluation ---")
			fmt.Fprintln(out, res.Fitted.Metrics.String())
			fmt.Fprintf(out, "✓ Model saved: %s (id %s)\n", c.ModelPath, res.Fitted.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&trainPath, "train", "", "training CSV (overrides config)")
	cmd.Flags().StringVar(&testPath, "test", "", "test CSV (overrides config)")
	cmd.Flags().StringVar(&modelPath, "model", "", "artifact output path (overrides config)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a predicted-vs-actual chart to this path (.png, .svg)")
	cmd.Flags().StringVar(&regressor, "regressor", "", "regressor: linear, ridge or lasso")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "regularization strength for ridge and lasso")
	cmd.Flags().Float64Var(&testSize, "test-size", 0, "validation fraction when the test CSV has no Price column")
	cmd.Flags().Int64Var(&seed, "seed", 0, "split seed")
	return cmd
}
