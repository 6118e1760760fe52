package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/countchrisdo/excel-url-downloader/internal/downloader"
)

// Read loads the spreadsheet at path and returns one task per row with a
// non-empty cell in the column titled urlColumn. Destination names are
// derived from the URL with defaultExt as the fallback extension.
//
// Any problem with the workbook itself (missing file, unreadable format,
// missing column) is fatal and returned as an error before any task is
// produced.
func Read(path, urlColumn, defaultExt string) ([]downloader.Task, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	col, err := findColumn(rows[0], urlColumn)
	if err != nil {
		return nil, err
	}

	var tasks []downloader.Task
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, row 1 is the header

		if col >= len(row) {
			continue
		}
		url := strings.TrimSpace(row[col])
		if url == "" {
			continue
		}

		tasks = append(tasks, downloader.Task{
			Row:  rowNum,
			URL:  url,
			Dest: DestName(url, rowNum, defaultExt),
		})
	}

	return tasks, nil
}

// Headers returns the header row of the first sheet.
func Headers(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func findColumn(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header row (have: %s)",
		name, strings.Join(header, ", "))
}
