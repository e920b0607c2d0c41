package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wazzymandias/github-linear-sync/internal/ui"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show which GitHub and Linear accounts the configured credentials belong to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		type identity struct {
			GitHub string `json:"github,omitempty"`
			Linear string `json:"linear,omitempty"`
		}
		var who identity
		var ghErr, linErr error

		if gh, err := newGitHubClient(cfg); err != nil {
			ghErr = err
		} else {
			who.GitHub, ghErr = gh.Viewer(cmd.Context())
		}
		if lin, err := newLinearClient(cfg); err != nil {
			linErr = err
		} else {
			who.Linear, linErr = lin.Viewer(cmd.Context())
		}

		if jsonOutput {
			if err := printJSON(who); err != nil {
				return err
			}
		} else {
			printAccount("GitHub", who.GitHub, ghErr)
			printAccount("Linear", who.Linear, linErr)
		}

		if ghErr != nil && linErr != nil {
			return fmt.Errorf("no working credentials (github: %v; linear: %v)", ghErr, linErr)
		}
		return nil
	},
}

func printAccount(service, login string, err error) {
	if err != nil {
		fmt.Printf("%s %-8s %s\n", ui.RenderFail(ui.IconFail), service, ui.RenderMuted(err.Error()))
		return
	}
	fmt.Printf("%s %-8s %s\n", ui.RenderPass(ui.IconPass), service, ui.RenderAccent(login))
}
