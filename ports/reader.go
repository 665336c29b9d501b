package ports

import (
	"context"

	"stablebin/domain/binning"
)

// ObservationReader loads a flat observation dataset from an external source
// (spreadsheet, CSV export, warehouse extract). Persistence formats are the
// caller's concern; the core only sees the Dataset shape.
type ObservationReader interface {
	Read(ctx context.Context) (*binning.Dataset, error)
}
