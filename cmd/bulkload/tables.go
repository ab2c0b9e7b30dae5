package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkload/internal/core"
	"github.com/JonMunkholm/bulkload/internal/store"
)

var tablesGroup string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Report which target tables exist",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the registered entities in run order",
	Args:  cobra.NoArgs,
	RunE:  runEntities,
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesGroup, "group", "g", "", "Only this entity group")
	entitiesCmd.Flags().StringVarP(&tablesGroup, "group", "g", "", "Only this entity group")
}

func runTables(cmd *cobra.Command, args []string) error {
	defs, err := core.Entities(tablesGroup)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := core.NewConnector(store.Opener(cfg.Database), cfg.Import.MaxRetries, cfg.Import.RetryUnit, nil)
	st, err := conn.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect(st)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tENTITY\tEXISTS")
	missing := 0
	for _, def := range defs {
		exists, err := st.TableExists(ctx, def.Profile.TargetTable)
		if err != nil {
			return fmt.Errorf("check table %s: %w", def.Profile.TargetTable, err)
		}
		if !exists {
			missing++
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\n", def.Profile.TargetTable, def.Name(), exists)
	}
	tw.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d tables missing\n", missing, len(defs))
	return nil
}

func runEntities(cmd *cobra.Command, args []string) error {
	defs, err := core.Entities(tablesGroup)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tGROUP\tENTITY\tTABLE\tSOURCE")
	for _, def := range defs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", def.Order, def.Group, def.Name(), def.Profile.TargetTable, def.Source)
	}
	return tw.Flush()
}
