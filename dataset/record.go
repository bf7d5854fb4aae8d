package dataset

// Record is one inference input keyed by training column name, for example
// {"Bedrooms": 3, "Bathrooms": 2, "Erf Size": "500 m²", "Type of Property": "House"}.
// Values may be numbers, strings or nil.
type Record map[string]any
