package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/store"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template", "tpl"},
	Short:   "Manage message templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates matching the saved filter",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a template with its components",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a local draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesAdd,
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a draft, or update a submitted template on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesUpdate,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a draft, or delete a submitted template on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

var templatesSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit a draft for approval",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesSubmit,
}

var templatesFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Set the search query and category used by list",
	RunE:  runTemplatesFilter,
}

var (
	tplAll      bool
	tplName     string
	tplLanguage string
	tplCategory string
	tplHeader   string
	tplBody     string
	tplFooter   string
	tplButtons  []string
	tplSearch   string
)

func init() {
	templatesListCmd.Flags().BoolVarP(&tplAll, "all", "a", false, "Ignore the saved filter")

	for _, c := range []*cobra.Command{templatesAddCmd, templatesUpdateCmd} {
		f := c.Flags()
		f.StringVar(&tplLanguage, "language", store.DefaultTemplateLanguage, "Language code")
		f.StringVar(&tplCategory, "category", string(store.DefaultTemplateCategory), "MARKETING, UTILITY or AUTHENTICATION")
		f.StringVar(&tplHeader, "header", "", "Header text")
		f.StringVar(&tplBody, "body", "", "Body text with {{n}} placeholders")
		f.StringVar(&tplFooter, "footer", "", "Footer text")
		f.StringSliceVar(&tplButtons, "button", nil, "Quick reply button text (repeatable)")
	}
	templatesUpdateCmd.Flags().StringVar(&tplName, "name", "", "Template name")

	templatesFilterCmd.Flags().StringVarP(&tplSearch, "search", "s", "", "Name contains (empty clears)")
	templatesFilterCmd.Flags().StringVar(&tplCategory, "category", "", "Category (empty clears)")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesUpdateCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
	templatesCmd.AddCommand(templatesSubmitCmd)
	templatesCmd.AddCommand(templatesFilterCmd)
}

// templatePatch collects the changed flags of cmd. Components are rebuilt
// when any of them is given.
func templatePatch(cmd *cobra.Command) models.TemplatePatch {
	var p models.TemplatePatch
	f := cmd.Flags()
	if f.Changed("name") {
		p.Name = &tplName
	}
	if f.Changed("language") {
		p.Language = &tplLanguage
	}
	if f.Changed("category") {
		cat := models.TemplateCategory(strings.ToUpper(tplCategory))
		p.Category = &cat
	}

	if f.Changed("header") || f.Changed("body") || f.Changed("footer") || f.Changed("button") {
		comps := models.Components{}
		if tplHeader != "" {
			comps = append(comps, models.HeaderComponent{Format: "TEXT", Text: tplHeader})
		}
		comps = append(comps, models.BodyComponent{Text: tplBody})
		if tplFooter != "" {
			comps = append(comps, models.FooterComponent{Text: tplFooter})
		}
		if len(tplButtons) > 0 {
			buttons := make([]models.Button, 0, len(tplButtons))
			for _, b := range tplButtons {
				buttons = append(buttons, models.Button{Type: "QUICK_REPLY", Text: b})
			}
			comps = append(comps, models.ButtonsComponent{Buttons: buttons})
		}
		p.Components = comps
	}
	return p
}

func printTemplate(t models.Template) {
	name := t.Name
	if store.IsDraft(t.ID) {
		name += " (draft)"
	}
	fmt.Printf("%-40s  %-28s  %-8s  %-14s  %-9s  %6d  %s\n",
		t.ID, name, t.Language, t.Category, t.Status, t.UsageCount, t.LastUpdated.Local().Format("2006-01-02"))
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Templates.Fetch(ctx); err != nil {
		logger.Warn("using cached templates", "error", err)
	}

	list := app.Templates.Filtered()
	if tplAll {
		list = app.Templates.List()
	}

	fmt.Printf("%-40s  %-28s  %-8s  %-14s  %-9s  %6s  %s\n", "ID", "Name", "Language", "Category", "Status", "Used", "Updated")
	fmt.Println(strings.Repeat("-", 130))
	for _, t := range list {
		printTemplate(t)
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	t, ok := app.Templates.Get(args[0])
	if !ok {
		return fmt.Errorf("template %s not found, run 'wadesk templates list' to refresh", args[0])
	}

	fmt.Printf("%s [%s, %s, %s]\n\n", t.Name, t.Language, t.Category, t.Status)
	for _, c := range t.Components {
		switch c := c.(type) {
		case models.HeaderComponent:
			if c.Text != "" {
				fmt.Printf("  %s\n", c.Text)
			} else {
				fmt.Printf("  <%s>\n", c.Format)
			}
		case models.BodyComponent:
			fmt.Printf("  %s\n", c.Text)
		case models.FooterComponent:
			fmt.Printf("  -- %s\n", c.Text)
		case models.ButtonsComponent:
			for _, b := range c.Buttons {
				fmt.Printf("  [ %s ]\n", b.Text)
			}
		}
	}
	return nil
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	p := templatePatch(cmd)
	p.Name = &args[0]
	if p.Category == nil {
		cat := store.DefaultTemplateCategory
		p.Category = &cat
	}

	t, err := app.Templates.Add(p)
	if err != nil {
		return err
	}
	fmt.Printf("Draft %s created (ID: %s)\n", t.Name, t.ID)
	return nil
}

func runTemplatesUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	t, err := app.Templates.Update(ctx, args[0], templatePatch(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("Template %s updated\n", t.Name)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Templates.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Template %s removed\n", args[0])
	return nil
}

func runTemplatesSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	t, err := app.Templates.Submit(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Template %s submitted (ID: %s, status %s)\n", t.Name, t.ID, t.Status)
	return nil
}

func runTemplatesFilter(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("search") {
		app.Templates.SetSearchQuery(tplSearch)
	}
	if f.Changed("category") {
		cat := models.TemplateCategory(strings.ToUpper(tplCategory))
		if cat != "" && !cat.Valid() {
			return fmt.Errorf("invalid category: %s", tplCategory)
		}
		app.Templates.SetFilterCategory(cat)
	}
	fmt.Printf("%d template(s) match\n", len(app.Templates.Filtered()))
	return nil
}
