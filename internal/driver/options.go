package driver

import (
	"vigil/internal/library"
	"vigil/internal/trace"
	"vigil/internal/types"
	"vigil/internal/valueflow"
)

// Options configure a driver run. Zero values fall back to the defaults the
// engine is tuned for.
type Options struct {
	MaxDiagnostics int
	Platform       types.Platform
	Library        *library.Library
	Budgets        valueflow.Budgets
	Tracer         trace.Tracer
	Cache          *DiskCache // nil отключает дисковый кэш
	Jobs           int        // параллелизм каталожного режима, 0 = NumCPU
}

func (o Options) withDefaults() Options {
	if o.MaxDiagnostics == 0 {
		o.MaxDiagnostics = 100
	}
	if o.Platform.Name == "" {
		o.Platform = types.PlatformUnix64()
	}
	if o.Library == nil {
		o.Library = library.Default()
	}
	if o.Budgets == (valueflow.Budgets{}) {
		o.Budgets = valueflow.DefaultBudgets()
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}
