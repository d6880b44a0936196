package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panoramicdata/solidtime-go/solidtime"
)

// ProjectsListOptions holds options for the projects list command
type ProjectsListOptions struct {
	Page     int
	Archived string
	All      bool
}

// NewProjectsCommand creates the projects command group
func NewProjectsCommand(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Work with an organization's projects",
	}

	cmd.AddCommand(
		newProjectsListCommand(sess),
		newProjectsGetCommand(sess),
		newProjectsDeleteCommand(sess),
	)
	return cmd
}

func newProjectsListCommand(sess *session) *cobra.Command {
	opts := &ProjectsListOptions{}

	cmd := &cobra.Command{
		Use:   "list <organization-id>",
		Short: "List projects",
		Example: `  # First page of active projects
  solidtime projects list 9b6b6a2e-...

  # Every page, archived included
  solidtime projects list 9b6b6a2e-... --archived all --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd, sess, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "Page to fetch")
	cmd.Flags().StringVar(&opts.Archived, "archived", "", "Archive filter: true, false or all")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Follow pagination and print every project")

	return cmd
}

func runProjectsList(cmd *cobra.Command, sess *session, orgID string, opts *ProjectsListOptions) error {
	archived, err := parseArchived(opts.Archived)
	if err != nil {
		return err
	}

	list := solidtime.ListProjectsOptions{Page: opts.Page, Archived: archived}
	var projects []solidtime.Project
	for {
		page, err := sess.client.Projects.List(cmd.Context(), orgID, list)
		if err != nil {
			return err
		}
		projects = append(projects, page.Data...)
		if !opts.All || !page.HasNext() {
			break
		}
		list.Page = page.Meta.CurrentPage + 1
	}

	if projects == nil {
		projects = []solidtime.Project{}
	}
	return printJSON(cmd.OutOrStdout(), projects)
}

func parseArchived(v string) (solidtime.Archived, error) {
	switch a := solidtime.Archived(v); a {
	case solidtime.ArchivedDefault, solidtime.ArchivedOnly, solidtime.ArchivedNone, solidtime.ArchivedAll:
		return a, nil
	default:
		return "", fmt.Errorf("invalid --archived value %q (want true, false or all)", v)
	}
}

func newProjectsGetCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <organization-id> <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sess.client.Projects.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newProjectsDeleteCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <organization-id> <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.client.Projects.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted project %s\n", args[1])
			return nil
		},
	}
}
