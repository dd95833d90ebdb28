package driver

import (
	"encoding/json"
	"fmt"

	"vela/internal/diag"
	"vela/internal/observ"
	"vela/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records report as an info diagnostic whose single
// note carries the JSON payload. It is added even when the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, file *source.File, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{
		Kind:    "tokenize",
		Path:    file.Path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	sp := source.Span{File: file.ID}
	d := diag.New(diag.SevInfo, diag.ObsTimings,
		sp, fmt.Sprintf("timings (tokenize): total %.3f ms, %s", payload.TotalMS, payload.Path)).
		WithNote(sp, string(data))

	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(d)
	bag.Merge(overflow)
}
