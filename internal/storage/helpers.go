package storage

import (
	"database/sql"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func toNullInt64(v uint16, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: valid}
}

func diagFirstPath(d *dw1000.Diagnostics) uint16 {
	if d == nil {
		return 0
	}
	return d.FirstPath
}

func diagStdNoise(d *dw1000.Diagnostics) uint16 {
	if d == nil {
		return 0
	}
	return d.StdNoise
}

func diagMaxNoise(d *dw1000.Diagnostics) uint16 {
	if d == nil {
		return 0
	}
	return d.MaxNoise
}
