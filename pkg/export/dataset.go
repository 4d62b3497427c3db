package export

import "fmt"

// Column describes one exported field: Key selects the value in a row, Title labels it.
type Column struct {
	Key   string
	Title string
}

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	return nil
}

func (d Dataset) titles() []string {
	titles := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		titles[i] = col.Title
		if titles[i] == "" {
			titles[i] = col.Key
		}
	}
	return titles
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		record[i] = row[col.Key]
	}
	return record
}
