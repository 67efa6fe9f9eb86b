package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/kmz"
	"github.com/sells-group/ftth-cli/internal/report"
)

var (
	designFormat   string
	designEntities bool
	geojsonOut     string
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Inspect KMZ network designs",
}

var designSummaryCmd = &cobra.Command{
	Use:   "summary <file.kmz>",
	Short: "Parse a design and print counts, cable lengths, drop histogram and NAP destinations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("design"); err != nil {
			return err
		}

		m, stats, err := loadDesign(args[0])
		if err != nil {
			return err
		}

		out := summary{File: filepath.Base(args[0]), Stats: stats, Report: report.Build(m)}
		if designEntities {
			out.Model = m
		}
		return render(cmd.OutOrStdout(), designFormat, out, out.table)
	},
}

var designGeoJSONCmd = &cobra.Command{
	Use:   "geojson <file.kmz>",
	Short: "Convert a design to a GeoJSON FeatureCollection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("design"); err != nil {
			return err
		}

		m, _, err := loadDesign(args[0])
		if err != nil {
			return err
		}
		data, err := m.GeoJSON()
		if err != nil {
			return err
		}

		if geojsonOut != "" {
			if err := os.WriteFile(geojsonOut, data, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", geojsonOut)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", geojsonOut, len(data))
			return nil
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

// loadDesign reads a .kmz archive (or a bare .kml payload) within the
// configured size limit and parses it.
func loadDesign(path string) (*design.Model, kmz.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kmz.Stats{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	limit := cfg.Design.MaxArchiveBytes()
	data, err := kmz.ReadLimited(f, limit)
	if err != nil {
		return nil, kmz.Stats{}, fmt.Errorf("read %s: %w", path, err)
	}

	p := kmz.NewParser(kmz.WithMaxPayloadBytes(limit))
	var (
		m     *design.Model
		stats kmz.Stats
	)
	if strings.HasSuffix(strings.ToLower(path), ".kml") {
		m, stats, err = p.ParseKML(data)
	} else {
		m, stats, err = p.Parse(data)
	}
	if err != nil {
		return nil, kmz.Stats{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, stats, nil
}

type summary struct {
	File   string         `json:"file" yaml:"file"`
	Stats  kmz.Stats      `json:"stats" yaml:"stats"`
	Report *report.Report `json:"report" yaml:"report"`
	Model  *design.Model  `json:"model,omitempty" yaml:"model,omitempty"`
}

func (s summary) table(tw *tabwriter.Writer) {
	r := s.Report

	row(tw, "DESIGN", s.File)
	row(tw, "PAYLOAD", s.Stats.Payload)
	row(tw)

	row(tw, "CATEGORY", "COUNT")
	for _, p := range r.Points {
		row(tw, p.Category, p.Count)
	}
	row(tw)

	row(tw, "CABLE CLASS", "COUNT", "TOTAL (m)")
	for _, c := range r.Cables {
		row(tw, c.Class, c.Count, fmt.Sprintf("%.1f", c.TotalM))
	}
	row(tw, "TOTAL", "", fmt.Sprintf("%.1f", r.TotalCableM()))
	row(tw)

	row(tw, "DROP LENGTH (m)", "COUNT")
	for _, b := range r.Histogram {
		row(tw, b.Label, b.Count)
	}
	row(tw)

	if len(r.Destinations) > 0 {
		row(tw, "DROP", "LENGTH (m)", "DESTINATION NAP", "DISTANCE (m)")
		for _, d := range r.Destinations {
			dist := "-"
			if d.Found {
				dist = fmt.Sprintf("%.1f", d.DistanceM)
			}
			row(tw, d.Cable, fmt.Sprintf("%.1f", d.LengthM), d.NAP, dist)
		}
		row(tw)
	}

	row(tw, "PLACEMARKS", s.Stats.Placemarks)
	row(tw, "SKIPPED TOKENS", s.Stats.SkippedTokens)
	row(tw, "EMPTY GEOMETRIES", s.Stats.EmptyGeometries)
	row(tw, "UNSUPPORTED", s.Stats.Unsupported)
	row(tw, "DEFAULT CLASSIFIED", s.Stats.Defaulted)
}

func init() {
	designSummaryCmd.Flags().StringVar(&designFormat, "format", formatTable, "output format: table, json or yaml")
	designSummaryCmd.Flags().BoolVar(&designEntities, "entities", false, "include every parsed entity in json/yaml output")
	designGeoJSONCmd.Flags().StringVarP(&geojsonOut, "out", "o", "", "write to a file instead of stdout")

	designCmd.AddCommand(designSummaryCmd, designGeoJSONCmd)
	rootCmd.AddCommand(designCmd)
}
