package domain

// Dataset describes a single dataset hosted on the Beacon platform,
// as returned by the dataset listing endpoint.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created,omitempty"`
	CreatedBy   string `json:"who,omitempty"`
}

// DatasetSchema is the reshaped dataset-info payload returned to the agent.
// Fields holds the rendered type description block in place of the upstream
// raw field array.
type DatasetSchema struct {
	Dataset string `json:"dataset"`
	Fields  string `json:"fields"`
}

// QueryResult holds the outcome of a pipeline-language query.
// The shape mirrors the upstream query endpoint's response; it is passed
// through to the agent without interpretation.
type QueryResult struct {
	Status  QueryStatus  `json:"status"`
	Matches []QueryMatch `json:"matches,omitempty"`
	Tables  []QueryTable `json:"tables,omitempty"`
}

// QueryStatus carries the execution metadata the upstream reports alongside
// every result.
type QueryStatus struct {
	ElapsedTime  int64  `json:"elapsedTime"`
	RowsExamined uint64 `json:"rowsExamined"`
	RowsMatched  uint64 `json:"rowsMatched"`
}

// QueryMatch is a single raw event matched by a filter query.
type QueryMatch struct {
	Time    string         `json:"_time"`
	SysTime string         `json:"_sysTime,omitempty"`
	Data    map[string]any `json:"data"`
}

// QueryTable is one aggregation table produced by a summarizing query.
type QueryTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
}
