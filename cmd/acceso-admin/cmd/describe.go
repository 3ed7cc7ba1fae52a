package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show detailed information about a resource",
}

var describeSelectionSetCmd = &cobra.Command{
	Use:   "selection-set <id>",
	Short: "Show a selection set, its snapshot and its resolved visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		id := args[0]

		var set map[string]any
		if err := client.get("/api/v1/selection-sets/"+id, &set); err != nil {
			return err
		}
		var snapshot map[string]any
		if err := client.get("/api/v1/selection-sets/"+id+"/snapshot", &snapshot); err != nil {
			return err
		}
		var visible map[string]any
		if err := client.get("/api/v1/selection-sets/"+id+"/visible-blocks", &visible); err != nil {
			return err
		}

		out := map[string]any{
			"selection_set":  set,
			"snapshot":       snapshot,
			"visible_blocks": visible,
		}
		if flagOutput == "json" {
			return printJSON(out)
		}

		fmt.Printf("Selection set %v\n", set["id"])
		fmt.Printf("  Company: %v\n", set["company_id"])
		if branch, ok := set["branch_id"]; ok && branch != nil {
			fmt.Printf("  Branch:  %v\n", branch)
		}
		if notes, ok := set["notes"]; ok && notes != nil && notes != "" {
			fmt.Printf("  Notes:   %v\n", notes)
		}
		fmt.Println("Snapshot:")
		for _, key := range []string{"module_ids", "level_ids", "sublevel_ids", "warehouse_ids", "cash_register_ids", "control_panel_ids", "seller_ids"} {
			if ids, ok := snapshot[key].([]any); ok {
				fmt.Printf("  %s: %d\n", key, len(ids))
			}
		}
		fmt.Printf("Visible blocks (%v): %v\n", visible["count"], visible["codes"])
		return nil
	},
}

var describeRequestCmd = &cobra.Command{
	Use:   "request <id>",
	Short: "Show an access request and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req map[string]any
		if err := newClient().get("/api/v1/requests/"+args[0], &req); err != nil {
			return err
		}
		if flagOutput == "json" {
			return printJSON(req)
		}

		fmt.Printf("Request %v\n", req["id"])
		fmt.Printf("  Kind:      %v\n", req["kind"])
		fmt.Printf("  Status:    %v\n", req["status"])
		fmt.Printf("  Applicant: %v\n", req["applicant"])
		if items, ok := req["items"].([]any); ok {
			fmt.Printf("  Items (%d):\n", len(items))
			for _, item := range items {
				if m, ok := item.(map[string]any); ok {
					fmt.Printf("    [%v] selection set %v\n", m["order"], m["selection_set_id"])
				}
			}
		}
		return nil
	},
}

func init() {
	describeCmd.AddCommand(describeSelectionSetCmd)
	describeCmd.AddCommand(describeRequestCmd)
}
