package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexfrei/go-cpapi"
)

// deleteResult is the --json rendering of one object's deletion.
type deleteResult struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
}

func newDeleteUnusedCmd(o *options) *cobra.Command {
	var (
		dryRun    bool
		doPublish bool
	)

	cmd := &cobra.Command{
		Use:   "delete-unused",
		Short: "Delete objects that nothing refers to",
		Long: `Delete unused hosts, networks, groups, services, address ranges and time objects.
Objects of other types are reported and left alone. Deletions are published
unless --publish=false is given, in which case they are discarded on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer shutdown(cmd, client)

			results, err := deleteUnused(cmd, o, client, dryRun)
			if err != nil {
				return err
			}

			if o.jsonOutput {
				if err := o.printer(cmd).printJSON(results); err != nil {
					return err
				}
			}

			if dryRun || !doPublish {
				return nil
			}

			return publish(cmd, o, client)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be deleted without deleting")
	cmd.Flags().BoolVar(&doPublish, "publish", true, "Publish the deletions")

	return cmd
}

func deleteUnused(cmd *cobra.Command, o *options, client cpapi.ManagementAPIClient, dryRun bool) ([]deleteResult, error) {
	p := o.printer(cmd)

	objects, err := client.UnusedObjects(cmd.Context())
	if err != nil {
		return nil, err
	}

	results := make([]deleteResult, 0, len(objects))
	for _, obj := range objects {
		result := deleteResult{UID: obj.UID, Name: obj.Name, Type: obj.Type}

		switch {
		case !obj.Deletable():
			result.Message = "unknown type"
			if !p.json {
				fmt.Fprintf(p.out, "Object %s has unknown type %s\n", obj.Name, obj.Type)
			}
		case dryRun:
			result.Message = "dry run"
			if !p.json {
				fmt.Fprintf(p.out, "Would delete %s %s\n", obj.Type, obj.Name)
			}
		default:
			message, err := client.DeleteObject(cmd.Context(), obj)
			if err != nil {
				result.Message = err.Error()
				if !p.json {
					fmt.Fprintf(p.out, "Deleting %s %s: %s\n", obj.Type, obj.Name, errorLabel.Sprint("Failed"))
				}
				break
			}

			result.Deleted = true
			result.Message = message
			if !p.json {
				fmt.Fprintf(p.out, "Deleting %s %s: %s\n", obj.Type, obj.Name, okLabel.Sprint(message))
			}
		}

		results = append(results, result)
	}

	return results, nil
}
