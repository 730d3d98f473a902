package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/events"
)

var topicsCmd = &cobra.Command{
	Use:               "topics",
	Short:             "List the events published on the message bus",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION\tEXAMPLE")
		fmt.Fprintln(w, "----\t-----------\t-------")
		for _, topic := range events.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", topic.Name, topic.Description, topic.Example)
		}
		return w.Flush()
	},
}

var topicsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show details about one event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, ok := events.Get(args[0])
		if !ok {
			return fmt.Errorf("topic not found: %s", args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:        %s\n", topic.Name)
		fmt.Fprintf(out, "Description: %s\n", topic.Description)
		fmt.Fprintf(out, "Example:     %s\n", topic.Example)
		return nil
	},
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)
	rootCmd.AddCommand(topicsCmd)
}
