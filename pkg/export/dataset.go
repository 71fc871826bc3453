package export

// Dataset is a flat table for CSV output. Every row carries one cell per header.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// Column describes one PDF agenda column. Width is in millimetres; zero
// widths share the space left over by the fixed ones.
type Column struct {
	Header string
	Width  float64
	Align  string
}

// Section is a headed block of agenda rows, typically one calendar day.
type Section struct {
	Heading string
	Rows    [][]string
}

// Agenda is the input of the PDF exporter.
type Agenda struct {
	Title    string
	Subtitle string
	Columns  []Column
	Sections []Section
}
