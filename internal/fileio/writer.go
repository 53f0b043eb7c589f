package fileio

import (
	"encoding/csv"
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"partcompare-service/internal/compare/model"
)

// ResultColumns — заголовки выгрузки: исходное описание, исходный номер,
// найденное описание, найденный номер.
var ResultColumns = []string{"Original_Remove", "Part Number_Remove", "New Parts_Add", "Part Number_Add"}

const ResultSheet = "Differences"

func resultRow(m model.MatchResult) []string {
	return []string{m.OriginalDescription, m.OriginalIdentifier, m.MatchedDescription, m.MatchedIdentifier}
}

// WriteCSV пишет UTF-8 CSV с заголовком, одна строка на совпадение.
func WriteCSV(w io.Writer, rs model.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultColumns); err != nil {
		return err
	}
	for _, m := range rs {
		if err := cw.Write(resultRow(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX пишет те же колонки на лист Differences.
func WriteXLSX(w io.Writer, rs model.ResultSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		return err
	}
	header := make([]interface{}, len(ResultColumns))
	for i, c := range ResultColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ResultSheet, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(ResultColumns), 1)
	if err := f.SetCellStyle(ResultSheet, "A1", last, style); err != nil {
		return err
	}
	for i, m := range rs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := resultRow(m)
		vals := []interface{}{row[0], row[1], row[2], row[3]}
		if err := f.SetSheetRow(ResultSheet, cell, &vals); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(ResultSheet, "A", "D", 36)

	return f.Write(w)
}
