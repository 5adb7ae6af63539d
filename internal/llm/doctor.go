package llm

import (
	"context"
	"os"
)

// Check is one diagnostic result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// DoctorReport summarizes advisory readiness.
type DoctorReport struct {
	Model  string
	Checks []Check
	Mock   bool
}

// OK reports whether every check passed.
func (r *DoctorReport) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Doctor verifies that the advisory subsystem could run: credentials
// present, client constructible, and (unless mock) one round trip to
// the provider.
func Doctor(ctx context.Context, opts Options) *DoctorReport {
	report := &DoctorReport{Mock: opts.Mock}

	if os.Getenv("OPENAI_API_KEY") == "" {
		report.Checks = append(report.Checks, Check{
			Name:   "credentials",
			Detail: "OPENAI_API_KEY is not set",
		})
		return report
	}
	report.Checks = append(report.Checks, Check{Name: "credentials", OK: true, Detail: "OPENAI_API_KEY present"})

	client, err := NewFromEnv()
	if err != nil {
		report.Checks = append(report.Checks, Check{Name: "client", Detail: err.Error()})
		return report
	}
	report.Model = client.ResolveModel(opts.Model)
	report.Checks = append(report.Checks, Check{Name: "client", OK: true, Detail: "base URL " + client.baseURL})

	if opts.Mock {
		report.Checks = append(report.Checks, Check{Name: "round trip", OK: true, Detail: "skipped (mock mode)"})
		return report
	}

	reply, _, err := client.Chat(ctx, report.Model,
		"You are a connectivity check. Answer with the single word: ok",
		"ping")
	if err != nil {
		report.Checks = append(report.Checks, Check{Name: "round trip", Detail: err.Error()})
		return report
	}
	report.Checks = append(report.Checks, Check{Name: "round trip", OK: true, Detail: "model replied: " + firstLine(reply)})
	return report
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
