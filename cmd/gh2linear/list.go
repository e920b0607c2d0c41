package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listOrg string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List GitHub and Linear resources",
}

var listOrgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List GitHub organizations for the authenticated user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gh, err := newGitHubClient(cfg)
		if err != nil {
			return err
		}
		orgs, err := gh.ListOrganizations(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(orgs)
		}
		for _, o := range orgs {
			fmt.Printf("%-24s %s\n", o.Login, o.Description)
		}
		return nil
	},
}

var listReposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List GitHub repositories (yours, or an organization's with --org)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gh, err := newGitHubClient(cfg)
		if err != nil {
			return err
		}
		var (
			repos interface{}
			list  []string
		)
		if listOrg != "" {
			rs, err := gh.ListRepositoriesForOrg(cmd.Context(), listOrg)
			if err != nil {
				return err
			}
			repos = rs
			for _, r := range rs {
				list = append(list, fmt.Sprintf("%-48s %s", r.FullName, r.Description))
			}
		} else {
			rs, err := gh.ListRepositoriesForUser(cmd.Context())
			if err != nil {
				return err
			}
			repos = rs
			for _, r := range rs {
				list = append(list, fmt.Sprintf("%-48s %s", r.FullName, r.Description))
			}
		}
		if jsonOutput {
			return printJSON(repos)
		}
		for _, line := range list {
			fmt.Println(line)
		}
		return nil
	},
}

var listTeamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List Linear teams",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lin, err := newLinearClient(cfg)
		if err != nil {
			return err
		}
		teams, err := lin.ListTeams(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(teams)
		}
		for _, t := range teams {
			fmt.Printf("%-8s %-32s %s\n", t.Key, t.Name, t.ID)
		}
		return nil
	},
}

var listProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Linear projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lin, err := newLinearClient(cfg)
		if err != nil {
			return err
		}
		projects, err := lin.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(projects)
		}
		for _, p := range projects {
			fmt.Printf("%-32s %-20s %s\n", p.Name, p.SlugID, p.URL)
		}
		return nil
	},
}

func init() {
	listReposCmd.Flags().StringVar(&listOrg, "org", "", "List repositories for this organization instead of your own")
	listCmd.AddCommand(listOrgsCmd, listReposCmd, listTeamsCmd, listProjectsCmd)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
