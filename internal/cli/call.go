package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lexfrei/go-cpapi"
)

func newCallCmd(o *options) *cobra.Command {
	var (
		data string
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "call METHOD",
		Short: "Call an API method and print the JSON reply",
		Long: `Call any API method. The payload starts from --data and each --set
assigns a value at a gjson path. Values that parse as JSON (numbers, true,
false, null, quoted strings, arrays, objects) are inserted as JSON; anything
else is inserted as a string.`,
		Example: `  cpctl call show-hosts --set limit=10 --set details-level=full
  cpctl call add-host --data '{"name":"web-01"}' --set ip-address=192.0.2.10
  cpctl call set-group --set name=web --set 'members.add=["web-01"]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := buildPayload(data, sets)
			if err != nil {
				return err
			}

			client, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer shutdown(cmd, client)

			resp, err := client.Call(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Get("@pretty").Raw)
			return errors.Wrap(err, "failed to write output")
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "{}", "JSON object to send")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set path=value in the payload (repeatable)")

	return cmd
}

// buildPayload applies path=value assignments to the JSON object in data.
func buildPayload(data string, sets []string) (cpapi.Payload, error) {
	if strings.TrimSpace(data) == "" {
		data = "{}"
	}
	if !gjson.Valid(data) || !gjson.Parse(data).IsObject() {
		return nil, errors.New("--data must be a JSON object")
	}

	doc := data
	for _, set := range sets {
		path, value, ok := strings.Cut(set, "=")
		if !ok || path == "" {
			return nil, errors.Newf("invalid --set %q, want path=value", set)
		}

		var err error
		if gjson.Valid(value) {
			doc, err = sjson.SetRaw(doc, path, value)
		} else {
			doc, err = sjson.Set(doc, path, value)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --set %q", set)
		}
	}

	var payload cpapi.Payload
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode payload")
	}

	return payload, nil
}
