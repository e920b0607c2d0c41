package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Wazzymandias/github-linear-sync/internal/mirror"
	"github.com/Wazzymandias/github-linear-sync/internal/ui"
)

type syncedIssueJSON struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
}

type failedIssueJSON struct {
	Repo    string `json:"repo"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Reason  string `json:"reason"`
	Skipped bool   `json:"skipped"`
}

type syncReportJSON struct {
	Succeeded        []syncedIssueJSON `json:"succeeded"`
	Failed           []failedIssueJSON `json:"failed"`
	PreflightSkipped int               `json:"preflight_skipped"`
}

func printSyncJSON(result *mirror.Result, preflightSkipped int) error {
	report := syncReportJSON{
		Succeeded:        make([]syncedIssueJSON, 0, len(result.Succeeded)),
		Failed:           make([]failedIssueJSON, 0, len(result.Failed)),
		PreflightSkipped: preflightSkipped,
	}
	for _, iss := range result.Succeeded {
		report.Succeeded = append(report.Succeeded, syncedIssueJSON{
			Identifier: iss.Identifier,
			Title:      iss.Title,
			URL:        iss.URL,
		})
	}
	for _, f := range result.Failed {
		report.Failed = append(report.Failed, failedIssueJSON{
			Repo:    f.Issue.RepoFullName(),
			Number:  f.Issue.Number,
			Title:   f.Issue.Title,
			Reason:  f.Reason,
			Skipped: f.Skipped(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printSyncReport(result *mirror.Result, preflightSkipped int) {
	for _, iss := range result.Succeeded {
		line := fmt.Sprintf("%s %s %s", ui.RenderPass(ui.IconPass), ui.RenderAccent(iss.Identifier), iss.Title)
		if iss.URL != "" {
			line += " " + ui.RenderMuted(iss.URL)
		}
		fmt.Println(line)
	}
	for _, f := range result.Failed {
		ref := fmt.Sprintf("%s#%d", f.Issue.RepoFullName(), f.Issue.Number)
		if f.Skipped() {
			fmt.Printf("%s %s %s\n", ui.RenderMuted(ui.IconSkip), ref, ui.RenderMuted(f.Reason))
		} else {
			fmt.Printf("%s %s %s\n", ui.RenderFail(ui.IconFail), ref, f.Reason)
		}
	}

	skips := preflightSkipped
	for _, f := range result.Failed {
		if f.Skipped() {
			skips++
		}
	}

	fmt.Println(ui.RenderSeparator())
	fmt.Printf("%d synced, %d skipped, %d failed\n",
		len(result.Succeeded), skips, result.HardFailures())
}
