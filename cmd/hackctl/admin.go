package main

import (
	"encoding/csv"
	"log"
	"os"

	"hackathon-management-backend/internal/services"

	"github.com/spf13/cobra"
)

func newExportCSVCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Export the full roster as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := services.NewPersonService(a.repo.PersonRepo).ExportCSV()
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			w := csv.NewWriter(out)
			if err := w.WriteAll(rows); err != nil {
				return err
			}
			if output != "" {
				log.Printf("wrote %d rows to %s", len(rows)-1, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newChangeEmailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "change-email <old> <new>",
		Short: "Move a registration to a new email address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			person, err := a.registrationService().ChangeEmail(args[0], args[1])
			if err != nil {
				return err
			}
			log.Printf("moved %s to %s (id %s)", args[0], args[1], person.ID)
			return nil
		},
	}
}
