package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/pages"
)

// NewListCmd creates the ls command
func NewListCmd() *cobra.Command {
	var q catalog.Query
	var interactive bool

	cmd := &cobra.Command{
		Use:     "ls [vertical]",
		Aliases: []string{"list"},
		Short:   "List listings",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if _, ok := catalog.Lookup(args[0]); !ok {
					return fmt.Errorf("unknown vertical %q (one of %v)", args[0], catalog.Slugs())
				}
				q.Vertical = args[0]
			} else if interactive {
				slug, err := selectVertical()
				if err != nil {
					return err
				}
				q.Vertical = slug
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := catalog.NewRepository(env.db, env.logger).List(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Listings) == 0 {
				fmt.Fprintln(out, "No listings found.")
				fmt.Fprintln(out, "\nGenerate some with: selgo seed")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVERTICAL\tTITLE\tPRICE\tVIEWS")
			for _, l := range result.Listings {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", l.ID, l.Vertical, l.Title, pages.FormatPrice(l.Price, l.Currency), l.Views)
			}
			w.Flush()

			fmt.Fprintf(out, "\nPage %d of %d (%d listings)\n", result.Page, result.Pages(), result.Total)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the vertical from a menu")
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "Free-text search")
	cmd.Flags().StringVar(&q.Sort, "sort", catalog.SortNewest, "newest, price_asc, price_desc or popular")
	cmd.Flags().IntVar(&q.Page, "page", 1, "Result page")
	cmd.Flags().IntVar(&q.PerPage, "per-page", catalog.DefaultPerPage, "Results per page")

	return cmd
}

type verticalOption struct {
	Label string
	Slug  string
}

// selectVertical lets the user pick a vertical; the first entry means all of them
func selectVertical() (string, error) {
	options := []verticalOption{{Label: "All verticals"}}
	for _, v := range catalog.Verticals() {
		options = append(options, verticalOption{Label: fmt.Sprintf("%s (%s)", v.Name, v.Slug), Slug: v.Slug})
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a vertical",
		Items:     options,
		Templates: templates,
		Size:      len(options),
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("vertical selection cancelled: %w", err)
	}
	return options[index].Slug, nil
}
