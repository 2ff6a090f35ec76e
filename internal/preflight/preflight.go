package preflight

import (
	"strings"

	"reelpipe/internal/config"
	"reelpipe/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the checks that apply to cfg's stage plans.
func RunAll(cfg *config.Config, stockExtensions []string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckCreatable("Output folder", cfg.OutputFolder)}
	if !cfg.Stages.Background.Substitute() {
		results = append(results, CheckStockFolder(cfg.StockVideosFolder, stockExtensions))
	}
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	if !cfg.Stages.Content.Substitute() {
		results = append(results, redditAccess(cfg.Reddit))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

// Summary joins failed check names for error messages.
func Summary(results []Result) string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name+": "+r.Detail)
	}
	return strings.Join(names, "; ")
}

func fromStatus(status deps.Status) Result {
	detail := status.Command
	if !status.Available {
		detail = status.Detail
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}

func redditAccess(cfg config.Reddit) Result {
	if cfg.HasCredentials() {
		return Result{Name: "Reddit", Passed: true, Detail: "OAuth client credentials"}
	}
	return Result{Name: "Reddit", Passed: true, Optional: true, Detail: "anonymous (rate limited)"}
}
