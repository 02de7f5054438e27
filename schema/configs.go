package schema

// DatabaseBackend represents the type of database used for persistence.
type DatabaseBackend string

// Supported database backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// OutputFormat represents the rendering format for CLI results.
type OutputFormat string

// Supported output formats.
const (
	TextOut    OutputFormat = "text"
	JSONOut    OutputFormat = "json"
	CSVOut     OutputFormat = "csv"
	ParquetOut OutputFormat = "parquet"
)

// Period is the bucketing granularity for time-series analytics.
type Period string

// Supported bucketing periods.
const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ValidPeriod reports whether p is a supported bucketing period.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}
