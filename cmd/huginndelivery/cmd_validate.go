package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

var validateCmd = &cobra.Command{
	Use:   "validate <calendar.yaml>",
	Short: "Validate a calendar YAML file",
	Long:  "Parse a store calendar file and report its contents, failing on invalid rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	stores, err := calendar.LoadCalendarFile(args[0])
	if err != nil {
		return err
	}

	codes := make([]string, 0, len(stores))
	for code := range stores {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		cal := stores[code]
		fmt.Printf("%s: cutoff %s, lead %dd, %d window(s), %d blackout(s), %d special schedule(s)\n",
			code, cal.CutoffTime, cal.LeadTimeDays, len(cal.Windows), len(cal.Blackouts), len(cal.SpecialWindows))
	}
	fmt.Printf("%d store(s) OK\n", len(stores))
	return nil
}
