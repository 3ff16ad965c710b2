package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/queue"
	"github.com/Atiwari330/hub-agent-sub001/internal/ruleconfig"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify deals from a JSON file",
	Long: `Runs every classifier over deals read from a file, without a database.

The input is a JSON array. Each element is either a deal snapshot or a
record with the deal plus optional engagements and latest commitment:

  [{"deal": {...}, "engagements": {"calls": [...]}, "commitment": {...}}]

Week-1 cadence is reported only for records that include engagements.

Example:
  go run ./cmd/hubagent classify --input deals.json
  go run ./cmd/hubagent classify --input - --format json --now 2025-02-03 < deals.json`,
	RunE: runClassify,
}

var (
	classifyInput  string
	classifyFormat string
	classifyNow    string
	classifyOffset int
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "JSON file of deals, - for stdin")
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "table", "output format (table|json)")
	classifyCmd.Flags().StringVar(&classifyNow, "now", "", "evaluate as of noon on this business date (YYYY-MM-DD)")
	classifyCmd.Flags().IntVar(&classifyOffset, "utc-offset", -5, "business UTC offset in hours")
	_ = classifyCmd.MarkFlagRequired("input")
}

// classifyRecord is one input element
type classifyRecord struct {
	Deal        contracts.DealSnapshot       `json:"deal"`
	Engagements *contracts.Engagements       `json:"engagements,omitempty"`
	Commitment  *contracts.HygieneCommitment `json:"commitment,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	if classifyFormat != "table" && classifyFormat != "json" {
		return fmt.Errorf("unknown format %q (expected table or json)", classifyFormat)
	}

	loc := time.FixedZone(fmt.Sprintf("UTC%+d", classifyOffset), classifyOffset*3600)
	cal, err := classifyCalendar(classifyNow, loc)
	if err != nil {
		return err
	}

	rules, err := ruleconfig.LoadOrDefault(rulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	var in io.Reader = os.Stdin
	if classifyInput != "-" {
		f, err := os.Open(classifyInput)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	records, err := decodeRecords(in)
	if err != nil {
		return err
	}

	builder := queue.NewBuilder(cal, rules, 0)
	bar := newProgressBar(len(records), "classifying")
	results := make([]queue.Classification, 0, len(records))
	for _, rec := range records {
		results = append(results, builder.Classify(rec.Deal, rec.Commitment, rec.Engagements))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	out := cmd.OutOrStdout()
	if classifyFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	renderClassifications(out, results)
	return nil
}

// classifyCalendar pins the clock to noon of date, or uses the wall clock when date is empty
func classifyCalendar(date string, loc *time.Location) (calendar.Calendar, error) {
	if date == "" {
		return calendar.New(loc), nil
	}
	day, err := calendar.ParseDate(date, loc)
	if err != nil {
		return calendar.Calendar{}, fmt.Errorf("invalid --now %q: %w", date, err)
	}
	return calendar.NewAt(day.Add(12*time.Hour), loc), nil
}

// decodeRecords accepts an array of records or of bare deal snapshots
func decodeRecords(r io.Reader) ([]classifyRecord, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	records := make([]classifyRecord, 0, len(raw))
	for i, msg := range raw {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(msg, &envelope); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		var rec classifyRecord
		if _, wrapped := envelope["deal"]; wrapped {
			if err := strictUnmarshal(msg, &rec); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		} else if err := json.Unmarshal(msg, &rec.Deal); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		if rec.Deal.ID == "" {
			return nil, fmt.Errorf("element %d: deal id is required", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func renderClassifications(w io.Writer, results []queue.Classification) {
	rows := make([][]string, 0, len(results))
	for _, c := range results {
		stalled := "-"
		if c.Staleness.IsStalled {
			stalled = fmt.Sprintf("%s (%dd)", c.Staleness.Severity, c.Staleness.DaysSinceActivity)
		}
		week1 := "-"
		if c.Week1 != nil {
			week1 = fmt.Sprintf("%s (%d/%d)", c.Week1.Status, c.Week1.Touches.Total, c.Week1.Target)
		}
		rows = append(rows, []string{
			c.Deal.ID,
			truncate(c.Deal.Name, 28),
			string(c.Risk.Level),
			string(c.Hygiene.Status),
			stalled,
			string(c.NextStep.Status),
			week1,
		})
	}
	printTable(w, []string{"DEAL", "NAME", "RISK", "HYGIENE", "STALLED", "NEXT STEP", "WEEK 1"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
