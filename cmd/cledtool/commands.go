package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"cled/internal/catalog"
	"cled/internal/persistence"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pixil98/go-errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	libraryDir string
	filter     catalog.Filter
)

var validateCmd = &cobra.Command{
	Use:   "validate <state.yaml>",
	Short: "Check a wall file and the hold library it refers to",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var routesCmd = &cobra.Command{
	Use:   "routes <state.yaml>",
	Short: "List the routes set on a wall",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoutes,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog <dir>",
	Short: "List the blueprints in a hold library",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalog,
}

func init() {
	validateCmd.Flags().StringVar(&libraryDir, "library", "", "Hold library to check against (default: the one the file names)")

	catalogCmd.Flags().StringVar(&filter.Type, "type", "", "Only blueprints of this type")
	catalogCmd.Flags().StringVar(&filter.Manufacturer, "manufacturer", "", "Only blueprints from this manufacturer")
	catalogCmd.Flags().StringVar(&filter.Color, "color", "", "Only blueprints with this color name")
	catalogCmd.Flags().StringVar(&filter.Label, "label", "", "Only blueprints carrying this label")
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := persistence.Load(args[0])
	if err != nil {
		return err
	}

	dir := libraryDir
	if dir == "" {
		dir = doc.HoldModelsPath
	}
	logger.Debug("Validating state", zap.String("path", args[0]), zap.String("library", dir))

	lib, err := catalog.Load(dir)
	if err != nil {
		return fmt.Errorf("library %s: %w", dir, err)
	}

	el := errors.NewErrorList()
	if _, err := os.Stat(doc.WallModelPath); err != nil {
		el.Add(fmt.Errorf("wall model: %w", err))
	}
	for _, id := range holdIDs(doc) {
		bp := doc.Holds[id].BlueprintID
		if _, ok := lib.Blueprint(bp); !ok {
			el.Add(fmt.Errorf("hold %s: blueprint %q is not in %s", id, bp, dir))
		}
	}
	for _, bp := range doc.SelectedHoldBlueprintIDs {
		if _, ok := lib.Blueprint(bp); !ok {
			el.Add(fmt.Errorf("selected blueprint %q is not in %s", bp, dir))
		}
	}
	if err := el.Err(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d holds, %d routes, %d blueprints)\n",
		args[0], len(doc.Holds), len(doc.Routes), lib.Len())
	return nil
}

func holdIDs(doc *persistence.Document) []string {
	ids := make([]string, 0, len(doc.Holds))
	for id := range doc.Holds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func runRoutes(cmd *cobra.Command, args []string) error {
	doc, err := persistence.Load(args[0])
	if err != nil {
		return err
	}

	t := newTable("Name", "Grade", "Zone", "Setter", "Holds", "Start", "End")
	for _, r := range doc.Routes {
		t.Row(r.Name, r.Grade, r.Zone, r.Setter,
			strconv.Itoa(len(r.HoldIDs)),
			strconv.Itoa(countIn(r.HoldIDs, doc.StartingHoldIDs)),
			strconv.Itoa(countIn(r.HoldIDs, doc.EndingHoldIDs)),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "%d routes, %d holds\n", len(doc.Routes), len(doc.Holds))
	return nil
}

func countIn(ids, set []string) int {
	n := 0
	for _, id := range ids {
		if slices.Contains(set, id) {
			n++
		}
	}
	return n
}

func runCatalog(cmd *cobra.Command, args []string) error {
	lib, err := catalog.Load(args[0])
	if err != nil {
		return err
	}

	bps := lib.Filter(filter)
	logger.Debug("Listing catalog", zap.String("dir", args[0]), zap.Int("matches", len(bps)), zap.Int("total", lib.Len()))

	t := newTable("ID", "Type", "Manufacturer", "Color", "Labels", "Volume")
	for _, bp := range bps {
		t.Row(bp.ID, bp.Type, bp.Manufacturer, bp.Color.Name,
			strings.Join(bp.Labels, ", "),
			strconv.FormatFloat(bp.Volume, 'g', -1, 64),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d blueprints\n", len(bps), lib.Len())
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}
