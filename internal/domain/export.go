package domain

// Export formats understood by both the local writers and the demo backend.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportRequest is the ephemeral payload handed to the exporter. It is
// consumed immediately and never retained.
type ExportRequest struct {
	Data   ResultSet `json:"data" validate:"required,min=1"`
	Format string    `json:"format" validate:"required,oneof=csv xlsx"`
}
