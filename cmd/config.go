package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dt-pm-tools/ground-control/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure Jira connection settings",
	Long:  `Interactively set up Jira URL, project key, username, and API token. Settings are saved to ~/.ground-control.yaml. Environment variables (JIRA_URL, JIRA_PROJECT, JIRA_USERNAME, JIRA_API_TOKEN) override the file at runtime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		// Load existing config for defaults
		existing, _ := config.Load(cfgFile)

		// URL
		defaultURL := existing.URL
		if defaultURL != "" {
			fmt.Printf("Jira URL [%s]: ", defaultURL)
		} else {
			fmt.Print("Jira URL (e.g., https://your-org.atlassian.net): ")
		}
		url, _ := reader.ReadString('\n')
		url = strings.TrimSpace(url)
		if url == "" {
			url = defaultURL
		}

		// Project key
		defaultProject := existing.Project
		if defaultProject != "" {
			fmt.Printf("Project key [%s]: ", defaultProject)
		} else {
			fmt.Print("Project key (e.g., DEMO): ")
		}
		project, _ := reader.ReadString('\n')
		project = strings.TrimSpace(project)
		if project == "" {
			project = defaultProject
		}

		// Username
		defaultUsername := existing.Username
		if defaultUsername != "" {
			fmt.Printf("Username [%s]: ", defaultUsername)
		} else {
			fmt.Print("Username (your Atlassian account email): ")
		}
		username, _ := reader.ReadString('\n')
		username = strings.TrimSpace(username)
		if username == "" {
			username = defaultUsername
		}

		// Token (masked input)
		fmt.Print("API Token (input hidden): ")
		tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // newline after hidden input
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token := strings.TrimSpace(string(tokenBytes))
		if token == "" {
			token = existing.Token
		}

		cfg := config.Config{
			URL:      url,
			Project:  project,
			Username: username,
			Token:    token,
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}

		fmt.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
