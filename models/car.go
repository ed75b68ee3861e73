package models

// RawTable is one worksheet read into memory: header cells in sheet order and
// data rows of cell text in the same column order. Rows may be shorter than
// the header when trailing cells are empty.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Car is one normalized listing. A nil field means the source had no usable
// value; empty strings and unparseable numbers never survive the transform,
// so nil is the only missing-value encoding past that point.
type Car struct {
	URL            string   `json:"url" db:"url"`
	RegNr          *string  `json:"regnr" db:"regnr"`
	ModelYear      *int64   `json:"model_year" db:"model_year"`
	PriceSEK       *int64   `json:"price_sek" db:"price_sek"`
	OdometerKM     *int64   `json:"odometer_km" db:"odometer_km"`
	Fuel           *string  `json:"fuel" db:"fuel"`
	BodyType       *string  `json:"body_type" db:"body_type"`
	Horsepower     *int64   `json:"horsepower" db:"horsepower"`
	PricePer1000KM *float64 `json:"price_per_1000km" db:"price_per_1000km"`
}
