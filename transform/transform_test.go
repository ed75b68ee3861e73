package transform

import (
	"testing"

	"github.com/rs/zerolog"

	"cars_etl/models"
)

var fullHeader = []string{
	"Url", "Registreringsnummer", "Modellår", "Pris (kr)",
	"Mätarställning (km)", "Bränsle", "Biltyp", "Hästkrafter",
}

func newTestTransformer() *Transformer { return New(zerolog.Nop()) }

func TestTransformBasicRow(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"http://x/1", "ABC123", "2020", "200000", "5000", "Bensin", "Kombi", "150"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected 1 car, got %d", len(cars))
	}

	c := cars[0]
	if c.URL != "http://x/1" {
		t.Errorf("unexpected url %q", c.URL)
	}
	if c.RegNr == nil || *c.RegNr != "ABC123" {
		t.Errorf("unexpected regnr %v", c.RegNr)
	}
	if c.ModelYear == nil || *c.ModelYear != 2020 {
		t.Errorf("unexpected model year %v", c.ModelYear)
	}
	if c.PriceSEK == nil || *c.PriceSEK != 200000 {
		t.Errorf("unexpected price %v", c.PriceSEK)
	}
	if c.OdometerKM == nil || *c.OdometerKM != 5000 {
		t.Errorf("unexpected odometer %v", c.OdometerKM)
	}
	if c.Fuel == nil || *c.Fuel != "Bensin" {
		t.Errorf("unexpected fuel %v", c.Fuel)
	}
	if c.BodyType == nil || *c.BodyType != "Kombi" {
		t.Errorf("unexpected body type %v", c.BodyType)
	}
	if c.Horsepower == nil || *c.Horsepower != 150 {
		t.Errorf("unexpected horsepower %v", c.Horsepower)
	}
	if c.PricePer1000KM == nil || *c.PricePer1000KM != 40000.0 {
		t.Errorf("expected price_per_1000km 40000.0, got %v", c.PricePer1000KM)
	}
}

func TestPricePer1000KM(t *testing.T) {
	i := func(v int64) *int64 { return &v }

	tests := []struct {
		name     string
		price    *int64
		odometer *int64
		want     *float64
	}{
		{"both present", i(200000), i(5000), f(40000.0)},
		{"rounded to two decimals", i(100000), i(30000), f(3333.33)},
		{"missing price", nil, i(5000), nil},
		{"missing odometer", i(200000), nil, nil},
		{"zero odometer", i(100000), i(0), nil},
		{"both missing", nil, nil, nil},
	}

	for _, tt := range tests {
		got := pricePer1000KM(tt.price, tt.odometer)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, *got, *tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }

func TestZeroOdometerRowIsKept(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"http://x/1", "ABC123", "2020", "100000", "0", "Bensin", "Kombi", "150"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected zero-odometer row to be kept, got %d rows", len(cars))
	}
	if cars[0].PricePer1000KM != nil {
		t.Errorf("expected nil price_per_1000km, got %v", *cars[0].PricePer1000KM)
	}
}

func TestTransformDropsMissingURL(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"", "AAA111", "2018", "100000", "1000", "Diesel", "Sedan", "120"},
			{"   ", "BBB222", "2019", "110000", "2000", "Diesel", "Sedan", "130"},
			{"http://x/1", "CCC333", "2020", "120000", "3000", "Diesel", "Sedan", "140"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected 1 car after dropping blank urls, got %d", len(cars))
	}
	if cars[0].URL != "http://x/1" {
		t.Errorf("unexpected surviving url %q", cars[0].URL)
	}
}

func TestTransformKeepsLastDuplicate(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"http://x/1", "AAA111", "2018", "100000", "1000", "Diesel", "Sedan", "120"},
			{"http://x/2", "BBB222", "2019", "110000", "2000", "Diesel", "Sedan", "130"},
			{"http://x/1", "CCC333", "2020", "120000", "3000", "El", "Kombi", "140"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 2 {
		t.Fatalf("expected 2 cars after dedupe, got %d", len(cars))
	}

	// Relative order preserved, survivor of x/1 is the later row.
	if cars[0].URL != "http://x/2" {
		t.Errorf("expected http://x/2 first, got %q", cars[0].URL)
	}
	if cars[1].URL != "http://x/1" {
		t.Fatalf("expected http://x/1 second, got %q", cars[1].URL)
	}
	if cars[1].RegNr == nil || *cars[1].RegNr != "CCC333" {
		t.Errorf("expected last row's regnr CCC333, got %v", cars[1].RegNr)
	}
	if cars[1].ModelYear == nil || *cars[1].ModelYear != 2020 {
		t.Errorf("expected last row's model year, got %v", cars[1].ModelYear)
	}
}

func TestOptInt(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"2020", i64(2020)},
		{"150.0", i64(150)},
		{"", nil},
		{"n/a", nil},
		{"150.5", nil},
		{"NaN", nil},
		{"-40", i64(-40)},
	}

	for _, tt := range tests {
		got := optInt(tt.raw)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("optInt(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("optInt(%q) = %d, want %d", tt.raw, *got, *tt.want)
		}
	}
}

func i64(v int64) *int64 { return &v }

func TestTransformMissingColumnsBecomeNil(t *testing.T) {
	table := &models.RawTable{
		Columns: []string{"Url"},
		Rows:    [][]string{{"http://x/1"}},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected 1 car, got %d", len(cars))
	}

	c := cars[0]
	if c.RegNr != nil || c.ModelYear != nil || c.PriceSEK != nil || c.OdometerKM != nil ||
		c.Fuel != nil || c.BodyType != nil || c.Horsepower != nil || c.PricePer1000KM != nil {
		t.Errorf("expected all optional fields nil, got %+v", c)
	}
}

func TestTransformTrimsAndBlanksStrings(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"  http://x/1  ", "  ABC123 ", "2020", "200000", "5000", "   ", "Kombi", "150"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected 1 car, got %d", len(cars))
	}
	if cars[0].URL != "http://x/1" {
		t.Errorf("url not trimmed: %q", cars[0].URL)
	}
	if cars[0].RegNr == nil || *cars[0].RegNr != "ABC123" {
		t.Errorf("regnr not trimmed: %v", cars[0].RegNr)
	}
	if cars[0].Fuel != nil {
		t.Errorf("whitespace-only fuel should be nil, got %q", *cars[0].Fuel)
	}
}

func TestTransformShortRows(t *testing.T) {
	table := &models.RawTable{
		Columns: fullHeader,
		Rows: [][]string{
			{"http://x/1", "ABC123"},
		},
	}

	cars := newTestTransformer().Transform(table)
	if len(cars) != 1 {
		t.Fatalf("expected 1 car, got %d", len(cars))
	}
	if cars[0].ModelYear != nil || cars[0].PriceSEK != nil {
		t.Errorf("cells past row end should be nil, got %+v", cars[0])
	}
}
