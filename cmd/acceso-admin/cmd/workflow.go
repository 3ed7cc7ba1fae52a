package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func workflowCommand(verb, pathSuffix string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <request-id>",
		Short: capitalize(verb) + " an access request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req map[string]any
			if err := newClient().post("/api/v1/requests/"+args[0]+pathSuffix, nil, &req); err != nil {
				return err
			}
			if flagOutput == "json" {
				return printJSON(req)
			}
			fmt.Printf("Request %v is now %v\n", req["id"], req["status"])
			return nil
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

var (
	submitCmd  = workflowCommand("submit", "/submit")
	approveCmd = workflowCommand("approve", "/approve")
	rejectCmd  = workflowCommand("reject", "/reject")
)
