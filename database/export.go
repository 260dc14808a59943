package database

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"gorm.io/gorm"
)

// CsvConverter streams a sql result set out as csv, with optional header
// override and value formatting.
type CsvConverter struct {
	Headers      []string
	WriteHeaders bool
	TimeFormat   string
	FloatFormat  string
	Delimiter    rune
	rows         *sql.Rows
}

func NewCsvConverter(rows *sql.Rows) *CsvConverter {
	return &CsvConverter{
		rows:         rows,
		WriteHeaders: true,
		Delimiter:    ',',
	}
}

func (c CsvConverter) WriteFile(csvFileName string) error {
	f, err := os.Create(csvFileName)
	if err != nil {
		return err
	}

	err = c.Write(f)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (c CsvConverter) Write(writer io.Writer) error {
	rows := c.rows

	csvWriter := csv.NewWriter(writer)

	if c.Delimiter != '\x00' {
		csvWriter.Comma = c.Delimiter
	}

	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}

	if c.WriteHeaders {
		headers := columnNames
		if len(c.Headers) > 0 {
			headers = c.Headers
		}

		err = csvWriter.Write(headers)
		if err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	count := len(columnNames)
	values := make([]interface{}, count)
	valuePtrs := make([]interface{}, count)

	for rows.Next() {
		row := make([]string, count)

		for i := range columnNames {
			valuePtrs[i] = &values[i]
		}

		if err = rows.Scan(valuePtrs...); err != nil {
			return err
		}

		for i := range columnNames {
			var value interface{}
			rawValue := values[i]

			byteArray, ok := rawValue.([]byte)
			if ok {
				value = string(byteArray)
			} else {
				value = rawValue
			}

			float64Value, ok := value.(float64)
			if ok && c.FloatFormat != "" {
				value = fmt.Sprintf(c.FloatFormat, float64Value)
			}

			timeValue, ok := value.(time.Time)
			if ok && c.TimeFormat != "" {
				value = timeValue.Format(c.TimeFormat)
			}

			if value == nil {
				row[i] = ""
			} else {
				row[i] = fmt.Sprintf("%v", value)
			}
		}

		err = csvWriter.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write data row to csv %w", err)
		}
	}
	err = rows.Err()
	csvWriter.Flush()

	return err
}

// ExportCSV writes every registry entry for an input file (or all entries
// when inputFile is empty) to a csv file.
func ExportCSV(db *gorm.DB, inputFile, csvFileName string) error {
	query := db.Table("run_entries").
		Select("id", "created_at", "input_file", "title", "model_run", "total_runs", "output_file", "iterations", "dt", "elapsed").
		Where("deleted_at is null").
		Order("created_at desc")
	if inputFile != "" {
		query = query.Where("input_file = ?", inputFile)
	}

	rows, err := query.Rows()
	if err != nil {
		return fmt.Errorf("failed to query runs for export: %s", err)
	}
	defer rows.Close()

	converter := NewCsvConverter(rows)
	converter.TimeFormat = time.RFC3339
	converter.FloatFormat = "%g"

	if err := converter.WriteFile(csvFileName); err != nil {
		return fmt.Errorf("failed to export runs to %s: %s", csvFileName, err)
	}
	return nil
}
