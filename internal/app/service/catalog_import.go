package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadCupcakeSheet reads catalog rows from the first sheet of an xlsx file.
// The first row is a header; columns are name, description, price, image,
// featured, new and rating. Rows that cannot be parsed are reported and
// skipped.
func ReadCupcakeSheet(r io.Reader) ([]CupcakeInput, []error, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var inputs []CupcakeInput
	var skipped []error
	for i, row := range rows {
		if i == 0 {
			continue
		}
		input, err := parseCupcakeRow(row)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs, skipped, nil
}

func parseCupcakeRow(row []string) (CupcakeInput, error) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	input := CupcakeInput{
		Name:        col(0),
		Description: col(1),
		Image:       col(3),
		IsFeatured:  parseFlag(col(4)),
		IsNew:       parseFlag(col(5)),
	}

	price, err := strconv.ParseFloat(strings.Replace(col(2), ",", ".", 1), 64)
	if err != nil {
		return CupcakeInput{}, fmt.Errorf("invalid price %q", col(2))
	}
	input.Price = price

	if s := col(6); s != "" {
		rating, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return CupcakeInput{}, fmt.Errorf("invalid rating %q", s)
		}
		input.Rating = rating
	}

	if err := validateCupcake(input); err != nil {
		return CupcakeInput{}, err
	}
	return input, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "sim", "x":
		return true
	}
	return false
}
