package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"genecrawler/internal/heredis"
	"genecrawler/internal/person"
)

func newPersonsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "persons <heredis-db>",
		Short: "List the persons parsed from a Heredis database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			adapter, err := heredis.Open(args[0])
			if err != nil {
				return err
			}
			defer adapter.Close()

			persons, stats, err := adapter.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load persons: %w", err)
			}
			person.SortOldestFirst(persons)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(persons))
			var withRegion, withPolish int
			for _, p := range persons {
				if p.BirthRegion != nil || p.DeathRegion != nil {
					withRegion++
				}
				if p.HasPolishConnection() {
					withPolish++
				}
				rows = append(rows, []string{
					p.ID,
					p.FullName(),
					formatYear(p.BirthYear),
					formatYear(p.DeathYear),
					formatRegion(p),
				})
			}

			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Name", "Birth", "Death", "Voivodeship"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))

			fmt.Fprintf(out, "%d person(s), %d skipped (%d without names, %d uncertain)\n",
				stats.Loaded, stats.SkippedNoName+stats.SkippedUncertain,
				stats.SkippedNoName, stats.SkippedUncertain)
			fmt.Fprintf(out, "%d with a known voivodeship, %d with a Polish connection\n",
				withRegion, withPolish)
			return nil
		},
	}
}

func formatYear(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

func formatRegion(p *person.Person) string {
	if region, ok := p.QueryRegion(); ok {
		return string(region)
	}
	return ""
}
