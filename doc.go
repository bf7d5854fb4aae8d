// Package housepricer estimates South African house prices with a linear
// regression over bedrooms, bathrooms, erf size and property type.
//
// A single training run cleans the listing CSVs, learns the preprocessing
// statistics and the regression weights, evaluates them and writes one
// immutable JSON artifact. The prediction service loads that artifact once
// and answers one record at a time.
//
// # Features
//
// - Erf size normalization: "500 m²", "1 ha" and plain numbers all become square meters
// - Train-time statistics only: serving never refits medians, scales or vocabularies
// - OLS via pseudoinverse: rank-deficient designs (collinear one-hot columns) still fit
// - Ridge and Lasso alternatives behind the same artifact format
// - Structured errors and logs: typed errors with stack traces, zerolog output
//
// # Quick Start
//
// Train from the command line:
//
//	housepricer train --train house_prices_train.csv --test house_prices_test.csv --model model.json
//	housepricer serve --model model.json
//
// Or use the library directly:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/housepricer/cleaning"
//	    "github.com/YuminosukeSato/housepricer/dataset"
//	    "github.com/YuminosukeSato/housepricer/pipeline"
//	)
//
//	func main() {
//	    frame, err := dataset.ReadCSV("house_prices_train.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    train, _, err := cleaning.Clean(frame)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fitted, err := pipeline.Train(context.Background(), train, pipeline.Options{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    price, err := pipeline.PredictOne(context.Background(), fitted, dataset.Record{
//	        "Bedrooms": 3, "Bathrooms": 2, "Erf Size": "500 m²", "Type of Property": "House",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("R %.2f\n", price)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - dataset: CSV loading, typed tables, reproducible train/test split
//   - cleaning: erf size and numeric parsing, row filtering
//   - preprocessing: median/mode imputation, standard scaling, one-hot encoding
//   - linear: LinearRegression (pseudoinverse OLS), Ridge, Lasso
//   - metrics: RMSE, MAE, R²
//   - pipeline: the fitted artifact, training run, save and load
//   - predict: the prediction service and its Redis cache
//   - report: predicted-vs-actual chart
//   - core/model: Core interfaces, weights and JSON persistence
//   - core/parallel: Parallel processing utilities
//
// # License
//
// housepricer is released under the MIT License.
package housepricer
