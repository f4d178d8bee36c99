package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/outbound/file"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/config"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <request-file>",
	Short: "Evaluate one request document and print the response",
	Long: `Load the policy corpus, evaluate a single request document
(JSON or YAML), and print the JSON response to stdout.

Example:
  sentinel-pdp evaluate request.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		req, err := file.LoadRequest(args[0])
		if err != nil {
			return err
		}
		response := engine.Decide(req)
		return printResponse(response)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func printResponse(response *pdp.Response) error {
	type wireAssignment struct {
		AttributeID string `json:"attributeId"`
		Category    string `json:"category,omitempty"`
		DataType    string `json:"dataType"`
		Value       string `json:"value"`
	}
	type wireObligation struct {
		ID          string           `json:"id"`
		Assignments []wireAssignment `json:"assignments,omitempty"`
	}
	type wireResult struct {
		Decision    string           `json:"decision"`
		StatusCode  string           `json:"statusCode,omitempty"`
		Message     string           `json:"statusMessage,omitempty"`
		Obligations []wireObligation `json:"obligations,omitempty"`
		Advice      []wireObligation `json:"advice,omitempty"`
	}

	render := func(in []pdp.AttributeAssignment) []wireAssignment {
		out := make([]wireAssignment, 0, len(in))
		for _, a := range in {
			out = append(out, wireAssignment{
				AttributeID: a.AttributeID,
				Category:    a.Category,
				DataType:    a.Value.Type(),
				Value:       a.Value.Canonical(),
			})
		}
		return out
	}

	results := make([]wireResult, 0, len(response.Results))
	for _, r := range response.Results {
		wr := wireResult{Decision: r.Decision.String()}
		if r.Decision.IsIndeterminate() {
			wr.StatusCode = r.Status.Code()
			wr.Message = r.Status.Message
		}
		for _, o := range r.Obligations {
			wr.Obligations = append(wr.Obligations, wireObligation{ID: o.ID, Assignments: render(o.Assignments)})
		}
		for _, a := range r.Advice {
			wr.Advice = append(wr.Advice, wireObligation{ID: a.ID, Assignments: render(a.Assignments)})
		}
		results = append(results, wr)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"results": results}); err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	return nil
}
