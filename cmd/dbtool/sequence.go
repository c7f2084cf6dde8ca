package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/services"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// rawStop is a stop object exactly as read from the input file.
// Fields other than the coordinates are echoed back untouched.
type rawStop = map[string]json.RawMessage

type sequenceOptions struct {
	StopsPath    string
	Lat, Lng     float64
	MaxSwaps     int
	LoadingSheet bool
}

func newSequenceCmd() *cobra.Command {
	var opts sequenceOptions

	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Sequences a JSON array of stops from a start point and prints the result",
		Long: `
Reads a JSON array of stop objects. Each object needs an "id" and may carry
"lat"/"lng" (or "latitude"/"longitude") as numbers or numeric strings. Stops
without usable coordinates are placed last in input order. Every input field
is written back with an added "delivery_sequence".
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInput(opts.StopsPath)
			if err != nil {
				return err
			}
			defer in.Close()

			return runSequence(in, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.StopsPath, "stops", "-", `stops JSON file ("-" reads stdin)`)
	cmd.Flags().Float64Var(&opts.Lat, "lat", 0, "start latitude")
	cmd.Flags().Float64Var(&opts.Lng, "lng", 0, "start longitude")
	cmd.Flags().IntVar(&opts.MaxSwaps, "max-swaps", 0, "2-opt swap budget (0 = default, negative = unbounded)")
	cmd.Flags().BoolVar(&opts.LoadingSheet, "loading-sheet", false, "print in truck loading order (last delivery first)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSequenceCmd())
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stops file: %w", err)
	}
	return f, nil
}

func runSequence(in io.Reader, out io.Writer, opts sequenceOptions) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stops: %w", err)
	}

	stops, err := parseStops(data)
	if err != nil {
		return err
	}

	start := domain.Coordinates{Lat: opts.Lat, Lon: opts.Lng}
	route, stats, err := services.Sequence(&start, stops, services.SequenceOptions{MaxSwaps: opts.MaxSwaps})
	if err != nil {
		return fmt.Errorf("sequence: %w", err)
	}

	log.Printf(
		"sequenced stops=%d invalid=%d nn_m=%.0f refined_m=%.0f swaps=%d exhausted=%t",
		len(route), stats.InvalidStops, stats.ConstructedMeters, stats.RefinedMeters,
		stats.Swaps, stats.SwapBudgetExhausted,
	)

	if opts.LoadingSheet {
		route = services.LoadingOrder(route)
	}

	rendered, err := renderRoute(route, opts.LoadingSheet)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rendered); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func parseStops(data []byte) ([]domain.Stop[rawStop], error) {
	var items []rawStop
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse stops: %w", err)
	}
	if items == nil {
		return nil, errors.New("parse stops: expected a JSON array")
	}

	stops := make([]domain.Stop[rawStop], 0, len(items))
	for i, item := range items {
		id, ok := stopID(item["id"])
		if !ok {
			return nil, fmt.Errorf("parse stops: item %d: id is required", i+1)
		}

		lat := coordinate(item, "lat", "latitude")
		lng := coordinate(item, "lng", "longitude")

		stops = append(stops, domain.Stop[rawStop]{
			ID:       id,
			Location: domain.NewCoordinates(lat, lng),
			Payload:  item,
		})
	}
	return stops, nil
}

// stopID accepts string or numeric ids; numbers are kept in their JSON spelling.
func stopID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// coordinate reads the first present key as a number or numeric string.
// Anything else, JSON null included, is treated as absent.
func coordinate(item rawStop, keys ...string) *float64 {
	for _, k := range keys {
		raw, ok := item[k]
		if !ok {
			continue
		}

		// null decodes into a nil pointer rather than 0.
		var f *float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return &v
			}
		}
		return nil
	}
	return nil
}

func renderRoute(route []domain.SequencedStop[rawStop], loading bool) ([]rawStop, error) {
	out := make([]rawStop, 0, len(route))
	for i, s := range route {
		obj := make(rawStop, len(s.Payload)+2)
		for k, v := range s.Payload {
			obj[k] = v
		}

		seq, err := json.Marshal(s.DeliverySequence)
		if err != nil {
			return nil, fmt.Errorf("render stop %q: %w", s.ID, err)
		}
		obj["delivery_sequence"] = seq

		if loading {
			obj["load_position"] = json.RawMessage(strconv.Itoa(i + 1))
		}
		out = append(out, obj)
	}
	return out, nil
}
