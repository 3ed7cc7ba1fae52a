package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "List API resources",
}

type listEnvelope struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total"`
}

func init() {
	getCmd.AddCommand(
		listCommand("companies", "/api/v1/companies", []string{"id", "name"}),
		listCommand("modules", "/api/v1/modules", []string{"id", "name"}),
		listCommand("action-permissions", "/api/v1/action-permissions", []string{"id", "group", "action", "value_kind"}),
		listCommand("matrix-permissions", "/api/v1/matrix-permissions", []string{"id", "name"}),
		listCommand("payment-methods", "/api/v1/payment-methods", []string{"id", "name"}),
		listCommand("blocks", "/api/v1/visibility/blocks", []string{"code", "name", "kind", "order"}),
		listCommand("templates", "/api/v1/templates", []string{"id", "name", "department", "role_name", "is_active"}),
	)
}

func listCommand(name, path string, columns []string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, args []string) error {
			var envelope listEnvelope
			if err := newClient().get(path, &envelope); err != nil {
				return err
			}
			return printList(envelope, columns)
		},
	}
}

func printList(envelope listEnvelope, columns []string) error {
	if flagOutput == "json" {
		return printJSON(envelope.Data)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for _, row := range envelope.Data {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprintf(w, "%v", row[col])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
