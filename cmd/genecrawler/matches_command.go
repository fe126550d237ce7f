package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"genecrawler/internal/matchstore"
	"genecrawler/internal/person"
)

func newMatchesCommand(ctx *commandContext) *cobra.Command {
	var (
		personFilter string
		sourceFilter string
	)

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List matches recorded by previous crawls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := matchstore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open match store: %w", err)
			}
			defer store.Close()

			filter := matchstore.Filter{Source: sourceFilter}
			if personFilter != "" {
				filter.PersonID = person.NormalizeRecordID(personFilter)
			}

			records, err := store.ListMatches(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.PersonID,
					rec.PersonGivenName + " " + rec.PersonSurname,
					rec.Source,
					rec.RecordType,
					formatYear(rec.Year),
					rec.ResultGivenName + " " + rec.ResultSurname,
					rec.Parish,
					rec.Locality,
					rec.ScanLink,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Person", "Name", "Source", "Type", "Year", "Record name", "Parish", "Locality", "Scan"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))

			stats, err := store.MatchStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d match(es) across %d person(s)\n", stats.TotalMatches, stats.MatchedPersons)
			for _, source := range sortedKeys(stats.BySource) {
				fmt.Fprintf(out, "  %s: %d\n", source, stats.BySource[source])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&personFilter, "person", "", "Only matches for this person record ID")
	cmd.Flags().StringVar(&sourceFilter, "source", "", "Only matches from this source")

	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
