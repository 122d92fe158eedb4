package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/uzgidro/lex-parser/pkg/document"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up one result page and print it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		asJSON, _ := cmd.Flags().GetBool("json")

		if page < 1 || page > cfg.Search.MaxPage {
			return fmt.Errorf("page must be between 1 and %d", cfg.Search.MaxPage)
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.Search(cmd.Context(), strings.Join(args, " "), page)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		renderResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("page", 1, "result page")
	searchCmd.Flags().Bool("json", false, "print the raw JSON result")
}

func renderResult(w io.Writer, result document.SearchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Badge", "Status", "URL"})

	for _, d := range result.Documents {
		number := ""
		if d.Number != nil {
			number = strconv.Itoa(*d.Number)
		}
		badge := ""
		if d.Badge != nil {
			badge = *d.Badge
		}
		status := "repealed"
		if d.IsActive() {
			status = "in force"
		}
		t.AppendRow(table.Row{number, d.Title, badge, status, d.URL})
	}

	t.SetCaption("page %d of %d", result.CurrentPage, result.TotalPages)
	t.Render()
}
