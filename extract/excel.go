package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"cars_etl/models"
)

// ErrInputMissing marks the spreadsheet path not existing, as opposed to the
// file being unreadable.
var ErrInputMissing = errors.New("input file not found")

// Sheet selects a worksheet. The zero value means "first sheet in workbook
// order".
type Sheet struct {
	Name    string
	Index   int
	byIndex bool
}

// ParseSheet interprets the CLI/config selector: empty or the literal "none"
// means no selector, all-digits is a zero-based index, anything else a name.
func ParseSheet(arg string) Sheet {
	v := strings.TrimSpace(arg)
	if v == "" || strings.EqualFold(v, "none") {
		return Sheet{}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return Sheet{Index: n, byIndex: true}
	}
	return Sheet{Name: v}
}

func (s Sheet) String() string {
	switch {
	case s.byIndex:
		return strconv.Itoa(s.Index)
	case s.Name != "":
		return s.Name
	default:
		return "auto"
	}
}

func (s Sheet) resolve(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	switch {
	case s.byIndex:
		if s.Index >= len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (%d sheets)", s.Index, len(sheets))
		}
		return sheets[s.Index], nil
	case s.Name != "":
		for _, name := range sheets {
			if name == s.Name {
				return name, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found", s.Name)
	default:
		return sheets[0], nil
	}
}

type Extractor struct {
	log zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// ReadExcel reads one worksheet into a RawTable, first row as header. A
// missing file is reported distinctly from a corrupt one; both are fatal.
func (e *Extractor) ReadExcel(path string, sheet Sheet) (*models.RawTable, error) {
	e.log.Info().Str("path", path).Str("sheet", sheet.String()).Msg("extract: reading Excel")

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		e.log.Error().Str("path", path).Msg("extract: Excel file not found")
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("extract: could not read Excel")
		return nil, fmt.Errorf("open excel %s: %w", path, err)
	}
	defer f.Close()

	name, err := sheet.resolve(f)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("extract: could not select sheet")
		return nil, fmt.Errorf("select sheet in %s: %w", path, err)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		e.log.Error().Err(err).Str("sheet", name).Msg("extract: could not read rows")
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	if len(rows) == 0 {
		return &models.RawTable{}, nil
	}
	return &models.RawTable{Columns: rows[0], Rows: rows[1:]}, nil
}
