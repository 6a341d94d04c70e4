package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var controllerCmd = &cobra.Command{
	Use:     "controller",
	Aliases: []string{"ctrl"},
	Short:   "Interact with the Automation Controller",
}

var controllerPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the controller",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Controller == nil {
			return fmt.Errorf("controller not configured; set AAP_CONTROLLER_URL")
		}

		info, err := app.Controller.Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("controller %s (active node: %s)\n", info.Version, info.ActiveNode)
		return nil
	},
}

var controllerWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account the credentials authenticate as",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Controller == nil {
			return fmt.Errorf("controller not configured; set AAP_CONTROLLER_URL")
		}

		user, err := app.Controller.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s (id %d, superuser: %t)\n", user.Username, user.ID, user.IsSuperuser)
		return nil
	},
}

var controllerTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List launchable job templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Controller == nil {
			return fmt.Errorf("controller not configured; set AAP_CONTROLLER_URL")
		}

		templates, err := app.Controller.ListJobTemplates(cmd.Context())
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			fmt.Println("No job templates found.")
			return nil
		}
		for _, tpl := range templates {
			line := fmt.Sprintf("%4d  %s [%s]", tpl.ID, tpl.Name, tpl.JobType)
			if tpl.Description != "" {
				line += " - " + tpl.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

var controllerLaunchCmd = &cobra.Command{
	Use:   "launch <template-id>",
	Short: "Launch a job template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Controller == nil {
			return fmt.Errorf("controller not configured; set AAP_CONTROLLER_URL")
		}

		templateID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid template id %q", args[0])
		}

		var extraVars map[string]any
		if raw, _ := cmd.Flags().GetString("extra-vars"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &extraVars); err != nil {
				return fmt.Errorf("invalid --extra-vars JSON: %w", err)
			}
		}

		job, err := app.Controller.LaunchJobTemplate(cmd.Context(), templateID, extraVars)
		if err != nil {
			return err
		}
		fmt.Printf("launched job %d (%s)\n", job.Job, job.Status)
		return nil
	},
}

func init() {
	controllerLaunchCmd.Flags().String("extra-vars", "", "extra variables as a JSON object")

	controllerCmd.AddCommand(
		controllerPingCmd,
		controllerWhoamiCmd,
		controllerTemplatesCmd,
		controllerLaunchCmd,
	)
	rootCmd.AddCommand(controllerCmd)
}
