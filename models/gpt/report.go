package gpt

import "fmt"

// String renders the report the way the reference run prints it:
// n_generated=N, n_processed=N, acceptance=F, throughput=F.
func (r Report) String(obsTime float64) string {
	return fmt.Sprintf("n_generated=%d, n_processed=%d, acceptance=%.2f, throughput=%.2f",
		r.NGenerated, r.NProcessed, r.Acceptance(), r.Throughput(obsTime))
}
