package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/store"
)

func (a *app) openStore() (*store.Store, error) {
	s, err := store.New(store.Config{DataDir: a.cfg.Storage.DataDir})
	if err != nil {
		return nil, fmt.Errorf("opening design catalogue: %w", err)
	}
	return s, nil
}

func (a *app) designsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "designs",
		Aliases: []string{"d"},
		Short:   "Manage the saved design catalogue",
	}
	cmd.AddCommand(
		a.designsSaveCmd(),
		a.designsListCmd(),
		a.designsSearchCmd(),
		a.designsShowCmd(),
		a.designsDeleteCmd(),
	)
	return cmd
}

func (a *app) designsSaveCmd() *cobra.Command {
	var (
		df          designFlags
		name, notes string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a design to the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := df.resolve(cmd, a.cfg.Design)
			if err != nil {
				return err
			}
			if name == "" {
				name = df.name
			}
			if notes == "" {
				notes = df.notes
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.Save(name, notes, p)
			if err != nil {
				return err
			}
			a.log.Info("design saved", zap.String("id", d.ID), zap.String("name", d.Name), zap.Bool("valid", d.IsValid))
			return writeJSON(cmd, d)
		},
	}
	df.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Design name (default from --design)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes, searchable")
	return cmd
}

func (a *app) designsListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved designs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			designs, err := s.List(limit)
			if err != nil {
				return err
			}
			return writeDesignTable(cmd, designs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum designs to list")
	return cmd
}

func (a *app) designsSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over design names, notes and materials",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			designs := make([]store.Design, len(results))
			for i, r := range results {
				designs[i] = r.Design
			}
			return writeDesignTable(cmd, designs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func (a *app) designsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved design with its recomputed geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.Get(args[0])
			if err != nil {
				return err
			}
			p, err := d.Params()
			if err != nil {
				return err
			}
			return writeJSON(cmd, struct {
				Design  *store.Design    `json:"design"`
				Summary geometry.Summary `json:"summary"`
			}{d, geometry.NewCalculator(p).Summary()})
		},
	}
}

func (a *app) designsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(args[0]); err != nil {
				return err
			}
			a.log.Info("design deleted", zap.String("id", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func writeDesignTable(cmd *cobra.Command, designs []store.Design) error {
	w := cmd.OutOrStdout()
	if len(designs) == 0 {
		fmt.Fprintln(w, "no designs")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTEETH\tMODULE\tMATERIAL\tRATIO\tVALID\tCREATED")
	for _, d := range designs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%s\t%.0f\t%t\t%s\n",
			d.ID, d.Name, d.TeethCS, d.Module, d.Material, d.Ratio, d.IsValid, d.CreatedAt)
	}
	return tw.Flush()
}
