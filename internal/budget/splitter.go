package budget

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnknownSplitter is returned for a ratio missing from SplitterPresets.
var ErrUnknownSplitter = eris.New("budget: unknown splitter ratio")

// Splitter is a PON splitter preset with its typical insertion loss.
type Splitter struct {
	Ratio  string  `json:"ratio" yaml:"ratio"`
	LossDb float64 `json:"loss_db" yaml:"loss_db"`
}

// SplitterPresets lists the supported splitters from smallest to largest.
var SplitterPresets = []Splitter{
	{Ratio: "none", LossDb: 0.0},
	{Ratio: "1:2", LossDb: 3.5},
	{Ratio: "1:4", LossDb: 7.2},
	{Ratio: "1:8", LossDb: 10.5},
	{Ratio: "1:16", LossDb: 13.5},
	{Ratio: "1:32", LossDb: 17.0},
	{Ratio: "1:64", LossDb: 20.5},
}

// SplitterLoss returns the preset loss for a ratio such as "1:8". An empty
// ratio is treated as "none".
func SplitterLoss(ratio string) (float64, error) {
	r := strings.ToLower(strings.TrimSpace(ratio))
	if r == "" {
		r = "none"
	}
	for _, s := range SplitterPresets {
		if s.Ratio == r {
			return s.LossDb, nil
		}
	}
	return 0, eris.Wrapf(ErrUnknownSplitter, "ratio %q", ratio)
}

// Spans are the OLT → NAP → CTO → ONT segment lengths in km.
type Spans struct {
	OLTToNAPKm float64 `json:"olt_to_nap_km" yaml:"olt_to_nap_km"`
	NAPToCTOKm float64 `json:"nap_to_cto_km" yaml:"nap_to_cto_km"`
	CTOToONTKm float64 `json:"cto_to_ont_km" yaml:"cto_to_ont_km"`
}

// DefaultSpans returns a representative urban layout.
func DefaultSpans() Spans {
	return Spans{OLTToNAPKm: 3.0, NAPToCTOKm: 0.8, CTOToONTKm: 0.15}
}

// TotalKm returns the end-to-end fiber distance.
func (s Spans) TotalKm() float64 {
	return s.OLTToNAPKm + s.NAPToCTOKm + s.CTOToONTKm
}
