package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled table inside a Report.
type Section struct {
	Title string
	Data  Dataset
}

// Report groups several small tables, such as the statistics breakdowns.
type Report struct {
	Title    string
	Subtitle string
	Sections []Section
}
