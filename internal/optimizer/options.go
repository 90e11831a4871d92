package optimizer

// Defaults match the production deployment: profit is quoted for a 100 kWh
// notional batch, and round-trip storage losses are modeled as a flat 85%
// efficiency applied to gross profit.
const (
	DefaultBatchSizeKWh     = 100.0
	DefaultEfficiencyFactor = 0.85
)

// Options tunes the optimizer. The zero value means "use defaults".
type Options struct {
	// BatchSizeKWh is the notional energy quantity profit is computed for.
	BatchSizeKWh float64

	// EfficiencyFactor scales gross profit into profit after losses.
	EfficiencyFactor float64

	// AlternatePair enables a fallback search for days where the global
	// minimum price does not precede the global maximum: the best
	// still-ordered pair is used instead of reporting no cycle. Off by
	// default; the primary contract is the single min/max heuristic.
	AlternatePair bool
}

func (o Options) withDefaults() Options {
	if o.BatchSizeKWh == 0 {
		o.BatchSizeKWh = DefaultBatchSizeKWh
	}
	if o.EfficiencyFactor == 0 {
		o.EfficiencyFactor = DefaultEfficiencyFactor
	}
	return o
}
