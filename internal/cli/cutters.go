package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/pkg/errors"
	pkgio "github.com/matzehuels/plasmap/pkg/io"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// cutterRow is one enzyme in the cutters listing.
type cutterRow struct {
	Name     string `json:"name"`
	CutCount int    `json:"cut_count"`
	Cuts     []int  `json:"cuts"`
}

type cutterReport struct {
	Name      string             `json:"name,omitempty"`
	Length    int                `json:"length"`
	Cutters   []cutterRow        `json:"cutters,omitempty"`
	NonCut    []string           `json:"non_cutters,omitempty"`
	Enzyme    string             `json:"enzyme,omitempty"`
	Circular  bool               `json:"circular,omitempty"`
	Fragments []plasmid.Fragment `json:"fragments,omitempty"`
}

// cuttersCommand creates the cutters command.
func (c *CLI) cuttersCommand() *cobra.Command {
	var (
		all    bool
		non    bool
		digest string
		linear bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "cutters [features]",
		Short: "List restriction enzymes and digest fragments",
		Long: `List the restriction enzymes annotated on a sequence.

By default only single cutters are listed. --all lists every enzyme with its
cut positions; --non lists common enzymes that do not cut the sequence.
--digest NAME prints the fragments an enzyme produces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := pkgio.ImportFile(args[0])
			if err != nil {
				return err
			}
			list, err := cutterList(seq)
			if err != nil {
				return err
			}
			report, err := buildCutterReport(seq, list, all, non, digest, !linear)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("grouped cutters", "sites", list.Len(), "enzymes", len(list.All()))
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printCutterReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every enzyme, not only single cutters")
	cmd.Flags().BoolVar(&non, "non", false, "list common enzymes that do not cut")
	cmd.Flags().StringVar(&digest, "digest", "", "print the fragments of the named enzyme")
	cmd.Flags().BoolVar(&linear, "linear", false, "digest as a linear sequence")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// cutterList groups the enzymes of seq.
func cutterList(seq pkgio.Sequence) (plasmid.CutterList, error) {
	conv, err := plasmid.NewConverter(seq.Length, plasmid.DefaultStartAngle)
	if err != nil {
		return plasmid.CutterList{}, err
	}
	features, err := plasmid.NewFeatures(conv, seq.Features, plasmid.DefaultGeometry())
	if err != nil {
		return plasmid.CutterList{}, err
	}
	return plasmid.GroupCutters(features), nil
}

func buildCutterReport(seq pkgio.Sequence, list plasmid.CutterList, all, non bool, digest string, circular bool) (cutterReport, error) {
	report := cutterReport{Name: seq.Name, Length: seq.Length}

	if digest != "" {
		cuts := list.Cuts(digest)
		if len(cuts) == 0 {
			return report, errors.New(errors.ErrCodeNotFound, "enzyme %s does not cut %s", digest, seq.Name)
		}
		report.Enzyme = digest
		report.Circular = circular
		report.Fragments = plasmid.Digest(cuts, seq.Length, circular)
		return report, nil
	}
	if non {
		report.NonCut = list.Non(plasmid.CommonCutters)
		return report, nil
	}

	enzymes := list.Unique()
	if all {
		enzymes = list.All()
	}
	report.Cutters = lo.Map(enzymes, func(f *plasmid.Feature, _ int) cutterRow {
		return cutterRow{Name: f.Name(), CutCount: f.CutCount(), Cuts: list.Cuts(f.Name())}
	})
	return report, nil
}

func printCutterReport(r cutterReport) {
	title := r.Name
	if title == "" {
		title = "sequence"
	}

	switch {
	case r.Enzyme != "":
		topology := lo.Ternary(r.Circular, "circular", "linear")
		fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("%s digest of %s", r.Enzyme, title)) +
			" " + StyleDim.Render(fmt.Sprintf("(%d bp, %s)", r.Length, topology)))
		rows := lo.Map(r.Fragments, func(f plasmid.Fragment, i int) []string {
			return []string{strconv.Itoa(i + 1), strconv.Itoa(f.Start), strconv.Itoa(f.End), strconv.Itoa(f.Length)}
		})
		printTable([]string{"#", "Start", "End", "Length"}, rows)

	case r.NonCut != nil:
		fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("Common enzymes not cutting %s", title)))
		printDetail("%s", strings.Join(r.NonCut, ", "))

	default:
		fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("Cutters of %s", title)) +
			" " + StyleDim.Render(fmt.Sprintf("(%d bp)", r.Length)))
		if len(r.Cutters) == 0 {
			printInfo("No enzymes")
			return
		}
		rows := lo.Map(r.Cutters, func(c cutterRow, _ int) []string {
			cuts := lo.Map(c.Cuts, func(p int, _ int) string { return strconv.Itoa(p) })
			return []string{c.Name, strconv.Itoa(c.CutCount), strings.Join(cuts, ", ")}
		})
		printTable([]string{"Enzyme", "Cuts", "Positions"}, rows)
	}
}
