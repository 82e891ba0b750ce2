package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// RunReport summarizes one `xdevs run` invocation: how far virtual
// time advanced, how long it took in wall-clock time, and (for models
// that track one) an acceptance/throughput breakdown.
type RunReport struct {
	Model    string  `json:"model" yaml:"model"`
	RunID    string  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Mode     string  `json:"mode" yaml:"mode"`
	TStart   float64 `json:"t_start" yaml:"t_start"`
	TStop    float64 `json:"t_stop" yaml:"t_stop"`
	TReached float64 `json:"t_reached" yaml:"t_reached"`

	Elapsed  time.Duration `json:"-" yaml:"-"`
	MaxDrift time.Duration `json:"-" yaml:"-"`

	NGenerated *int     `json:"n_generated,omitempty" yaml:"n_generated,omitempty"`
	NProcessed *int     `json:"n_processed,omitempty" yaml:"n_processed,omitempty"`
	Acceptance *float64 `json:"acceptance,omitempty" yaml:"acceptance,omitempty"`
	Throughput *float64 `json:"throughput,omitempty" yaml:"throughput,omitempty"`

	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// reportMarshalable mirrors RunReport with the duration fields
// rendered as strings, since time.Duration marshals to JSON/YAML as a
// bare nanosecond integer otherwise.
type reportMarshalable struct {
	RunReport
	ElapsedStr  string `json:"elapsed" yaml:"elapsed"`
	MaxDriftStr string `json:"max_drift,omitempty" yaml:"max_drift,omitempty"`
}

func (r RunReport) marshalable() reportMarshalable {
	m := reportMarshalable{RunReport: r, ElapsedStr: formatDuration(r.Elapsed)}
	if r.MaxDrift != 0 {
		m.MaxDriftStr = formatDuration(r.MaxDrift)
	}
	return m
}

func printReport(r RunReport, format string) error {
	switch format {
	case "json":
		return printReportJSON(r)
	case "yaml":
		return printReportYAML(r)
	default:
		return printReportTable(r)
	}
}

func printReportTable(r RunReport) error {
	color.Cyan("xdevs run report")
	fmt.Printf("Model: %s   Mode: %s\n", r.Model, r.Mode)
	if r.RunID != "" {
		fmt.Printf("Run ID: %s\n", r.RunID)
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)

	table.Append([]string{"t_start", fmt.Sprintf("%g", r.TStart)})
	table.Append([]string{"t_stop", fmt.Sprintf("%g", r.TStop)})
	table.Append([]string{"t_reached", fmt.Sprintf("%g", r.TReached)})
	table.Append([]string{"elapsed", formatDuration(r.Elapsed)})
	if r.MaxDrift != 0 {
		table.Append([]string{"max_drift", formatDuration(r.MaxDrift)})
	}
	if r.NGenerated != nil {
		table.Append([]string{"n_generated", fmt.Sprintf("%d", *r.NGenerated)})
	}
	if r.NProcessed != nil {
		table.Append([]string{"n_processed", fmt.Sprintf("%d", *r.NProcessed)})
	}
	if r.Acceptance != nil {
		table.Append([]string{"acceptance", fmt.Sprintf("%.4f", *r.Acceptance)})
	}
	if r.Throughput != nil {
		table.Append([]string{"throughput", fmt.Sprintf("%.4f", *r.Throughput)})
	}
	if r.Notes != "" {
		table.Append([]string{"notes", r.Notes})
	}

	table.Render()
	return nil
}

func printReportJSON(r RunReport) error {
	data, err := json.MarshalIndent(r.marshalable(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printReportYAML(r RunReport) error {
	data, err := yaml.Marshal(r.marshalable())
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
