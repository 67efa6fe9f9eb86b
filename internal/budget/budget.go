// Package budget computes the optical power budget of a PON link and
// classifies the resulting margin.
package budget

// Status is the link classification derived from the margin.
type Status string

// Link statuses.
const (
	StatusOK         Status = "OK"
	StatusMarginal   Status = "MARGINAL"
	StatusOutOfRange Status = "OUT_OF_RANGE"
)

// Margin thresholds in dB.
const (
	OKMarginDb       = 3.0
	MarginalMarginDb = 0.0
)

// Params are the scalar link inputs. Values are used as given: negative
// distances or counts are not rejected.
type Params struct {
	DistanceKm         float64 `json:"distance_km" yaml:"distance_km"`
	TxPowerDbm         float64 `json:"tx_power_dbm" yaml:"tx_power_dbm"`
	RxSensitivityDbm   float64 `json:"rx_sensitivity_dbm" yaml:"rx_sensitivity_dbm"`
	AttenuationDbPerKm float64 `json:"attenuation_db_per_km" yaml:"attenuation_db_per_km"`
	SpliceCount        int     `json:"splice_count" yaml:"splice_count"`
	ConnectorCount     int     `json:"connector_count" yaml:"connector_count"`
	SpliceLossDb       float64 `json:"splice_loss_db" yaml:"splice_loss_db"`
	ConnectorLossDb    float64 `json:"connector_loss_db" yaml:"connector_loss_db"`
	SplitterLossNAPDb  float64 `json:"splitter_loss_nap_db" yaml:"splitter_loss_nap_db"`
	SplitterLossCTODb  float64 `json:"splitter_loss_cto_db" yaml:"splitter_loss_cto_db"`
}

// DefaultParams returns a typical GPON drop: 3.95 km of G.652 fiber, a 1:4
// splitter at the NAP and none at the CTO.
func DefaultParams() Params {
	return Params{
		DistanceKm:         DefaultSpans().TotalKm(),
		TxPowerDbm:         3.0,
		RxSensitivityDbm:   -27.0,
		AttenuationDbPerKm: 0.21,
		SpliceCount:        8,
		ConnectorCount:     6,
		SpliceLossDb:       0.05,
		ConnectorLossDb:    0.25,
		SplitterLossNAPDb:  7.2,
		SplitterLossCTODb:  0.0,
	}
}

// Result is the loss decomposition of one calculation.
type Result struct {
	FiberLossDb      float64 `json:"fiber_loss_db" yaml:"fiber_loss_db"`
	SpliceLossDb     float64 `json:"splice_loss_db" yaml:"splice_loss_db"`
	ConnectorLossDb  float64 `json:"connector_loss_db" yaml:"connector_loss_db"`
	SplitterLossDb   float64 `json:"splitter_loss_db" yaml:"splitter_loss_db"`
	TotalLossDb      float64 `json:"total_loss_db" yaml:"total_loss_db"`
	ReceivedPowerDbm float64 `json:"received_power_dbm" yaml:"received_power_dbm"`
	MarginDb         float64 `json:"margin_db" yaml:"margin_db"`
	Status           Status  `json:"status" yaml:"status"`
	Color            string  `json:"color" yaml:"color"`
	Comment          string  `json:"comment" yaml:"comment"`

	splitterNAPDb float64
	splitterCTODb float64
}

// Compute evaluates the link budget. It never fails.
func Compute(p Params) Result {
	fiber := p.DistanceKm * p.AttenuationDbPerKm
	splices := float64(p.SpliceCount) * p.SpliceLossDb
	connectors := float64(p.ConnectorCount) * p.ConnectorLossDb
	splitters := p.SplitterLossNAPDb + p.SplitterLossCTODb
	total := fiber + splices + connectors + splitters
	received := p.TxPowerDbm - total
	margin := received - p.RxSensitivityDbm

	status := Classify(margin)
	return Result{
		FiberLossDb:      fiber,
		SpliceLossDb:     splices,
		ConnectorLossDb:  connectors,
		SplitterLossDb:   splitters,
		TotalLossDb:      total,
		ReceivedPowerDbm: received,
		MarginDb:         margin,
		Status:           status,
		Color:            status.Color(),
		Comment:          status.Comment(),
		splitterNAPDb:    p.SplitterLossNAPDb,
		splitterCTODb:    p.SplitterLossCTODb,
	}
}

// Classify maps a margin to a status. Boundaries are inclusive on the
// lower edge: 3.0 is OK and 0.0 is MARGINAL.
func Classify(marginDb float64) Status {
	switch {
	case marginDb >= OKMarginDb:
		return StatusOK
	case marginDb >= MarginalMarginDb:
		return StatusMarginal
	default:
		return StatusOutOfRange
	}
}

// Color returns the display colour for the status.
func (s Status) Color() string {
	switch s {
	case StatusOK:
		return "green"
	case StatusMarginal:
		return "orange"
	default:
		return "red"
	}
}

// Comment returns a short engineering note for the status.
func (s Status) Comment() string {
	switch s {
	case StatusOK:
		return "The link has a healthy engineering margin."
	case StatusMarginal:
		return "The link works but with little margin. Review the design."
	default:
		return "The link does not meet the ONT sensitivity. Review the design and losses."
	}
}

// Line is one row of a loss breakdown table.
type Line struct {
	Item   string  `json:"item" yaml:"item"`
	LossDb float64 `json:"loss_db" yaml:"loss_db"`
}

// Breakdown lists the individual loss contributions.
func (r Result) Breakdown() []Line {
	return []Line{
		{Item: "Fiber", LossDb: r.FiberLossDb},
		{Item: "Splices", LossDb: r.SpliceLossDb},
		{Item: "Connectors", LossDb: r.ConnectorLossDb},
		{Item: "Splitter NAP", LossDb: r.splitterNAPDb},
		{Item: "Splitter CTO", LossDb: r.splitterCTODb},
	}
}
