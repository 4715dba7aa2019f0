package export

// Dataset is tabular export content. Every row has one cell per column.
type Dataset struct {
	Title   string
	Columns []string
	Rows    [][]string
	// Widths are relative column weights for paged renderers; nil means equal.
	Widths []float64
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}
