package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/internal/ui"
	"github.com/YuminosukeSato/housepricer/pipeline"
	"github.com/YuminosukeSato/housepricer/predict"
)

func newPredictCmd(st *state) *cobra.Command {
	var (
		modelPath, erfSize, propertyType string
		bedrooms, bathrooms              float64
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the price of one property",
		Example: `  housepricer predict --bedrooms 3 --bathrooms 2 --erf-size "500 m²" --type House
  housepricer predict --bedrooms 4 --bathrooms 3 --erf-size "1 ha" --type House`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("model") {
				st.cfg.ModelPath = modelPath
			}
			f, err := pipeline.Load(st.cfg.ModelPath)
			if err != nil {
				return err
			}

			rec := dataset.Record{
				dataset.ColBedrooms:     bedrooms,
				dataset.ColBathrooms:    bathrooms,
				dataset.ColErfSize:      erfSize,
				dataset.ColPropertyType: propertyType,
			}
			price, err := predict.NewService(f).Predict(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatRand(price))
			return nil
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "artifact path (overrides config)")
	cmd.Flags().Float64Var(&bedrooms, "bedrooms", 3, "number of bedrooms")
	cmd.Flags().Float64Var(&bathrooms, "bathrooms", 2, "number of bathrooms")
	cmd.Flags().StringVar(&erfSize, "erf-size", "500", `erf size, e.g. "500", "500 m²" or "1 ha"`)
	cmd.Flags().StringVar(&propertyType, "type", "House", "type of property")
	return cmd
}
