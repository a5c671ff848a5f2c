package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/models"
)

var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Aliases: []string{"campaign"},
	Short:   "Manage broadcast campaigns",
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns with their delivery funnel",
	RunE:  runCampaignsList,
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsCreate,
}

var campaignsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a campaign as a new draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsDuplicate,
}

var campaignsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsDelete,
}

var campaignsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set a campaign status (draft, scheduled, sending, sent, completed, failed)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCampaignsStatus,
}

var campaignsSimulateCmd = &cobra.Command{
	Use:   "simulate <id>",
	Short: "Simulate sending a campaign and follow its progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsSimulate,
}

var (
	campaignTotal    int
	campaignTemplate string
	campaignGoal     string
	campaignSchedule string
	campaignStatus   string
)

func init() {
	f := campaignsCreateCmd.Flags()
	f.IntVarP(&campaignTotal, "total", "n", 0, "Number of contacts to reach")
	f.StringVar(&campaignTemplate, "template", "", "Template name")
	f.StringVar(&campaignGoal, "goal", "", "Campaign goal")
	f.StringVar(&campaignSchedule, "schedule", "", "Send time, RFC 3339 or \"2006-01-02 15:04\" local time")
	f.StringVar(&campaignStatus, "status", string(models.CampaignDraft), "Initial status")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsDuplicateCmd)
	campaignsCmd.AddCommand(campaignsDeleteCmd)
	campaignsCmd.AddCommand(campaignsStatusCmd)
	campaignsCmd.AddCommand(campaignsSimulateCmd)
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) * 100 / float64(of)
}

func printCampaign(c models.Campaign) {
	fmt.Printf("%-36s  %-28s  %-10s  %6d  %6d (%5.1f%%)  %6d (%5.1f%%)  %6d\n",
		c.ID, c.Name, c.Status,
		c.SentCount,
		c.DeliveredCount, percent(c.DeliveredCount, c.SentCount),
		c.ReadCount, percent(c.ReadCount, c.DeliveredCount),
		c.TotalContacts,
	)
}

func printCampaignHeader() {
	fmt.Printf("%-36s  %-28s  %-10s  %6s  %15s  %15s  %6s\n", "ID", "Name", "Status", "Sent", "Delivered", "Read", "Total")
	fmt.Println(strings.Repeat("-", 130))
}

func runCampaignsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Campaigns.Fetch(ctx); err != nil {
		return err
	}

	printCampaignHeader()
	for _, c := range app.Campaigns.List() {
		printCampaign(c)
	}
	return nil
}

func parseSchedule(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q", s)
	}
	return &t, nil
}

func runCampaignsCreate(cmd *cobra.Command, args []string) error {
	status := models.CampaignStatus(campaignStatus)
	if !status.Valid() {
		return fmt.Errorf("invalid status: %s", campaignStatus)
	}
	scheduled, err := parseSchedule(campaignSchedule)
	if err != nil {
		return err
	}
	if scheduled != nil && !cmd.Flags().Changed("status") {
		status = models.CampaignScheduled
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	c, err := app.Campaigns.Create(ctx, models.CampaignRequest{
		Name:          args[0],
		Status:        status,
		TotalContacts: campaignTotal,
		TemplateName:  campaignTemplate,
		Goal:          campaignGoal,
		ScheduledDate: scheduled,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Campaign %s created (ID: %s)\n", c.Name, c.ID)
	return nil
}

func runCampaignsDuplicate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Campaigns.Fetch(ctx); err != nil {
		return err
	}
	c, err := app.Campaigns.Duplicate(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Campaign %s created (ID: %s)\n", c.Name, c.ID)
	return nil
}

func runCampaignsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Campaigns.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Campaign %s deleted\n", args[0])
	return nil
}

func runCampaignsStatus(cmd *cobra.Command, args []string) error {
	status := models.CampaignStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("invalid status: %s", args[1])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Campaigns.Fetch(ctx); err != nil {
		return err
	}
	if err := app.Campaigns.UpdateStatus(ctx, args[0], status); err != nil {
		return err
	}
	fmt.Printf("Campaign %s is now %s\n", args[0], status)
	return nil
}

func runCampaignsSimulate(cmd *cobra.Command, args []string) error {
	id := args[0]

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Campaigns.Fetch(ctx); err != nil {
		logger.Warn("using cached campaigns", "error", err)
	}

	started, err := app.Campaigns.StartSimulation(id)
	if err != nil {
		return err
	}
	if !started {
		c, _ := app.Campaigns.Get(id)
		fmt.Printf("Campaign %s is %s, nothing to simulate\n", c.Name, c.Status)
		return nil
	}

	finish := func(c models.Campaign) error {
		if c.Status != models.CampaignCompleted {
			return nil
		}
		return app.Campaigns.UpdateStatus(ctx, id, models.CampaignCompleted)
	}

	printCampaignHeader()
	for {
		select {
		case <-ctx.Done():
			app.Campaigns.StopSimulation(id)
			fmt.Println("Simulation stopped, progress is kept")
			return nil
		case c := <-campaignTicks:
			if c.ID != id {
				continue
			}
			printCampaign(c)
			if c.Status == models.CampaignCompleted {
				return finish(c)
			}
		case <-time.After(2 * cfg.Campaigns.TickInterval):
			// ticks are dropped when nobody reads them fast enough
			if !app.Campaigns.Simulating(id) {
				c, _ := app.Campaigns.Get(id)
				printCampaign(c)
				return finish(c)
			}
		}
	}
}
