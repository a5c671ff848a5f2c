package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/models"
)

var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"contact"},
	Short:   "Manage contacts",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	RunE:  runContactsList,
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <name> <phone>",
	Short: "Add a contact",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactsAdd,
}

var contactsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a contact",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsUpdate,
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContactsDelete,
}

var (
	contactSearch string
	contactName   string
	contactPhone  string
	contactEmail  string
	contactAvatar string
	contactTags   []string
)

func init() {
	contactsListCmd.Flags().StringVarP(&contactSearch, "search", "s", "", "Filter by name, phone or tag")

	for _, c := range []*cobra.Command{contactsAddCmd, contactsUpdateCmd} {
		c.Flags().StringVar(&contactEmail, "email", "", "Email address")
		c.Flags().StringVar(&contactAvatar, "avatar", "", "Avatar URL")
		c.Flags().StringSliceVarP(&contactTags, "tag", "t", nil, "Tag (repeatable)")
	}
	contactsUpdateCmd.Flags().StringVar(&contactName, "name", "", "Name")
	contactsUpdateCmd.Flags().StringVar(&contactPhone, "phone", "", "Phone number")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsAddCmd)
	contactsCmd.AddCommand(contactsUpdateCmd)
	contactsCmd.AddCommand(contactsDeleteCmd)
}

func matchContact(c models.Contact, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func runContactsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Contacts.Fetch(ctx); err != nil {
		return err
	}

	fmt.Printf("%-36s  %-24s  %-16s  %s\n", "ID", "Name", "Phone", "Tags")
	fmt.Println(strings.Repeat("-", 100))
	n := 0
	for _, c := range app.Contacts.List() {
		if contactSearch != "" && !matchContact(c, contactSearch) {
			continue
		}
		fmt.Printf("%-36s  %-24s  %-16s  %s\n", c.ID, c.Name, c.Phone, strings.Join(c.Tags, ","))
		n++
	}
	fmt.Printf("\n%d contact(s)\n", n)
	return nil
}

// contactPatch collects the changed flags of cmd
func contactPatch(cmd *cobra.Command) models.ContactPatch {
	var p models.ContactPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = &contactName
	}
	if flags.Changed("phone") {
		p.Phone = &contactPhone
	}
	if flags.Changed("email") {
		p.Email = &contactEmail
	}
	if flags.Changed("avatar") {
		p.Avatar = &contactAvatar
	}
	if flags.Changed("tag") {
		p.Tags = models.NormalizeTags(contactTags)
	}
	return p
}

func runContactsAdd(cmd *cobra.Command, args []string) error {
	p := contactPatch(cmd)
	p.Name = &args[0]
	p.Phone = &args[1]

	ctx, cancel := commandContext(cmd)
	defer cancel()

	c, err := app.Contacts.Add(ctx, p)
	if err != nil {
		return err
	}
	fmt.Printf("Contact %s added (ID: %s)\n", c.Name, c.ID)
	return nil
}

func runContactsUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	c, err := app.Contacts.Update(ctx, args[0], contactPatch(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("Contact %s updated\n", c.Name)
	return nil
}

func runContactsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Contacts.DeleteMany(ctx, args); err != nil {
		return err
	}
	fmt.Printf("%d contact(s) deleted\n", len(args))
	return nil
}
