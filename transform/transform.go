package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cars_etl/models"
)

// Spreadsheet headers are matched exactly, case- and whitespace-sensitive.
const (
	colURL        = "Url"
	colRegNr      = "Registreringsnummer"
	colModelYear  = "Modellår"
	colPrice      = "Pris (kr)"
	colOdometer   = "Mätarställning (km)"
	colFuel       = "Bränsle"
	colBodyType   = "Biltyp"
	colHorsepower = "Hästkrafter"
)

type Transformer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Transformer {
	return &Transformer{log: log}
}

// Transform normalizes a raw sheet into Cars: maps columns, cleans strings,
// coerces numerics, computes price per 1000 km, drops rows without a url and
// keeps the last row per url. Columns absent from the sheet yield nil fields.
func (t *Transformer) Transform(table *models.RawTable) []models.Car {
	t.log.Info().Msg("transform: normalizing columns and computing fields")

	idx := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		if _, dup := idx[col]; !dup {
			idx[col] = i
		}
	}

	cars := make([]models.Car, 0, len(table.Rows))
	for _, row := range table.Rows {
		cell := func(header string) string {
			i, ok := idx[header]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		url := cell(colURL)
		if url == "" {
			continue
		}

		car := models.Car{
			URL:        url,
			RegNr:      optText(cell(colRegNr)),
			ModelYear:  optInt(cell(colModelYear)),
			PriceSEK:   optInt(cell(colPrice)),
			OdometerKM: optInt(cell(colOdometer)),
			Fuel:       optText(cell(colFuel)),
			BodyType:   optText(cell(colBodyType)),
			Horsepower: optInt(cell(colHorsepower)),
		}
		car.PricePer1000KM = pricePer1000KM(car.PriceSEK, car.OdometerKM)

		cars = append(cars, car)
	}

	return t.dedupeByURL(cars)
}

// dedupeByURL keeps only the last occurrence of each url, preserving the
// relative order of the surviving rows.
func (t *Transformer) dedupeByURL(cars []models.Car) []models.Car {
	last := make(map[string]int, len(cars))
	for i, c := range cars {
		last[c.URL] = i
	}
	if len(last) == len(cars) {
		return cars
	}

	out := make([]models.Car, 0, len(last))
	for i, c := range cars {
		if last[c.URL] == i {
			out = append(out, c)
		}
	}

	t.log.Info().Int("removed", len(cars)-len(out)).Msg("transform: duplicate urls removed")
	return out
}

func optText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optInt parses an integer cell. Excel sometimes renders integer cells as
// floats ("150.0"), which are accepted when the fraction is zero. Anything
// unparseable degrades to missing, never to an error.
func optInt(s string) *int64 {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) {
		n := int64(f)
		return &n
	}
	return nil
}

// pricePer1000KM guards before dividing: either operand missing or a zero
// odometer yields missing, so no division error can occur.
func pricePer1000KM(price, odometer *int64) *float64 {
	if price == nil || odometer == nil || *odometer == 0 {
		return nil
	}
	v := math.Round(float64(*price)/float64(*odometer)*1000.0*100) / 100
	return &v
}
