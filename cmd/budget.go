package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sells-group/ftth-cli/internal/budget"
	"github.com/sells-group/ftth-cli/internal/config"
)

var budgetFlags struct {
	format        string
	distance      float64
	oltNap        float64
	napCto        float64
	ctoOnt        float64
	tx            float64
	sensitivity   float64
	attenuation   float64
	splices       int
	connectors    int
	spliceLoss    float64
	connectorLoss float64
	splitterNAP   string
	splitterCTO   string
	listSplitters bool
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Compute the optical power budget of an OLT → NAP → CTO → ONT link",
	Long: "Computes fiber, splice, connector and splitter losses, the received power and the margin against the ONT sensitivity. " +
		"Unset flags fall back to the budget section of the configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if budgetFlags.listSplitters {
			return render(cmd.OutOrStdout(), budgetFlags.format, budget.SplitterPresets, func(tw *tabwriter.Writer) {
				row(tw, "RATIO", "LOSS (dB)")
				for _, s := range budget.SplitterPresets {
					row(tw, s.Ratio, fmt.Sprintf("%.1f", s.LossDb))
				}
			})
		}

		p, err := budgetParams(cmd.Flags(), cfg.Budget)
		if err != nil {
			return err
		}
		res := budget.Compute(p)

		out := struct {
			Params    budget.Params `json:"params" yaml:"params"`
			Result    budget.Result `json:"result" yaml:"result"`
			Breakdown []budget.Line `json:"breakdown" yaml:"breakdown"`
		}{Params: p, Result: res, Breakdown: res.Breakdown()}

		return render(cmd.OutOrStdout(), budgetFlags.format, out, func(tw *tabwriter.Writer) {
			row(tw, "ITEM", "LOSS (dB)")
			for _, l := range out.Breakdown {
				row(tw, l.Item, fmt.Sprintf("%.3f", l.LossDb))
			}
			row(tw, "TOTAL", fmt.Sprintf("%.3f", res.TotalLossDb))
			row(tw)
			row(tw, "DISTANCE (km)", fmt.Sprintf("%.3f", p.DistanceKm))
			row(tw, "RECEIVED (dBm)", fmt.Sprintf("%.3f", res.ReceivedPowerDbm))
			row(tw, "MARGIN (dB)", fmt.Sprintf("%.3f", res.MarginDb))
			row(tw, "STATUS", res.Status)
			row(tw, "NOTE", res.Comment)
		})
	},
}

// budgetParams merges explicitly set flags over the configured defaults.
// --distance wins over the span flags.
func budgetParams(fs *pflag.FlagSet, c config.BudgetConfig) (budget.Params, error) {
	f := budgetFlags
	pick := func(name string, flagVal, cfgVal float64) float64 {
		if fs.Changed(name) {
			return flagVal
		}
		return cfgVal
	}
	pickInt := func(name string, flagVal, cfgVal int) int {
		if fs.Changed(name) {
			return flagVal
		}
		return cfgVal
	}
	pickStr := func(name, flagVal, cfgVal string) string {
		if fs.Changed(name) {
			return flagVal
		}
		return cfgVal
	}

	spans := budget.Spans{
		OLTToNAPKm: pick("olt-nap", f.oltNap, c.OLTToNAPKm),
		NAPToCTOKm: pick("nap-cto", f.napCto, c.NAPToCTOKm),
		CTOToONTKm: pick("cto-ont", f.ctoOnt, c.CTOToONTKm),
	}
	distance := spans.TotalKm()
	if fs.Changed("distance") {
		distance = f.distance
	}

	napLoss, err := budget.SplitterLoss(pickStr("splitter-nap", f.splitterNAP, c.SplitterNAP))
	if err != nil {
		return budget.Params{}, fmt.Errorf("splitter-nap: %w", err)
	}
	ctoLoss, err := budget.SplitterLoss(pickStr("splitter-cto", f.splitterCTO, c.SplitterCTO))
	if err != nil {
		return budget.Params{}, fmt.Errorf("splitter-cto: %w", err)
	}

	return budget.Params{
		DistanceKm:         distance,
		TxPowerDbm:         pick("tx", f.tx, c.TxPowerDbm),
		RxSensitivityDbm:   pick("sensitivity", f.sensitivity, c.RxSensitivityDbm),
		AttenuationDbPerKm: pick("attenuation", f.attenuation, c.AttenuationDbPerKm),
		SpliceCount:        pickInt("splices", f.splices, c.SpliceCount),
		ConnectorCount:     pickInt("connectors", f.connectors, c.ConnectorCount),
		SpliceLossDb:       pick("splice-loss", f.spliceLoss, c.SpliceLossDb),
		ConnectorLossDb:    pick("connector-loss", f.connectorLoss, c.ConnectorLossDb),
		SplitterLossNAPDb:  napLoss,
		SplitterLossCTODb:  ctoLoss,
	}, nil
}

func init() {
	fs := budgetCmd.Flags()
	fs.StringVar(&budgetFlags.format, "format", formatTable, "output format: table, json or yaml")
	fs.Float64Var(&budgetFlags.distance, "distance", 0, "total fiber distance in km (overrides the span flags)")
	fs.Float64Var(&budgetFlags.oltNap, "olt-nap", 0, "OLT → NAP span in km")
	fs.Float64Var(&budgetFlags.napCto, "nap-cto", 0, "NAP → CTO span in km")
	fs.Float64Var(&budgetFlags.ctoOnt, "cto-ont", 0, "CTO → ONT span in km")
	fs.Float64Var(&budgetFlags.tx, "tx", 0, "OLT transmit power in dBm")
	fs.Float64Var(&budgetFlags.sensitivity, "sensitivity", 0, "ONT receiver sensitivity in dBm")
	fs.Float64Var(&budgetFlags.attenuation, "attenuation", 0, "fiber attenuation in dB/km")
	fs.IntVar(&budgetFlags.splices, "splices", 0, "number of fusion splices")
	fs.IntVar(&budgetFlags.connectors, "connectors", 0, "number of connectors")
	fs.Float64Var(&budgetFlags.spliceLoss, "splice-loss", 0, "loss per splice in dB")
	fs.Float64Var(&budgetFlags.connectorLoss, "connector-loss", 0, "loss per connector in dB")
	fs.StringVar(&budgetFlags.splitterNAP, "splitter-nap", "", "splitter at the NAP (none, 1:2 ... 1:64)")
	fs.StringVar(&budgetFlags.splitterCTO, "splitter-cto", "", "splitter at the CTO (none, 1:2 ... 1:64)")
	fs.BoolVar(&budgetFlags.listSplitters, "list-splitters", false, "print the splitter presets and exit")
	rootCmd.AddCommand(budgetCmd)
}
