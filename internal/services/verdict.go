package services

import "github.com/codetrek/backend/internal/models"

// Aggregate is the reduction of a batch of per-case verdicts into a single
// submission outcome
type Aggregate struct {
	Passed       int
	Runtime      float64 // sum of accepted case times, seconds
	Memory       int     // peak across accepted cases, KB
	Status       models.SubmissionStatus
	ErrorMessage string
}

// AggregateVerdicts reduces verdicts in submission order. Accepted cases
// contribute to passed/runtime/memory; the first non-accepted verdict fixes
// both the outcome (ERROR for a runtime/compile fault, WRONG_ANSWER otherwise)
// and the error message, and later failures never overwrite either.
func AggregateVerdicts(verdicts []Verdict) Aggregate {
	agg := Aggregate{Status: models.StatusAccepted}
	failed := false

	for _, v := range verdicts {
		if v.Accepted() {
			agg.Passed++
			agg.Runtime += v.Time
			if v.Memory > agg.Memory {
				agg.Memory = v.Memory
			}
			continue
		}
		if failed {
			continue
		}
		failed = true
		if v.Faulted() {
			agg.Status = models.StatusError
		} else {
			agg.Status = models.StatusWrong
		}
		if v.Stderr != "" {
			agg.ErrorMessage = v.Stderr
		} else {
			agg.ErrorMessage = v.CompileOutput
		}
	}

	return agg
}
