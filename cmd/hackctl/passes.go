package main

import (
	"fmt"
	"log"

	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/wallet"

	"github.com/spf13/cobra"
)

func newGeneratePassesCmd(a *app) *cobra.Command {
	var (
		email       string
		all         bool
		dest        string
		skipSigning bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "generate-passes",
		Short: "Render wallet passes and QR badges for confirmed people",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && !all {
				return fmt.Errorf("pass --email or --all")
			}

			people, err := collectTargets(a, email, all)
			if err != nil {
				return err
			}
			if dryRun {
				for i := range people {
					log.Printf("would generate for %s", people[i].Email)
				}
				log.Printf("dry run: %d pass(es) planned", len(people))
				return nil
			}

			cfg := a.cfg.Passkit
			if dest != "" {
				cfg.PassDir = dest
				cfg.QRDir = dest
			}
			gen := wallet.NewGenerator(&cfg, a.cfg.EventStartsAt)
			defer gen.Close()

			// One bad record must not sink the batch.
			failures := 0
			for i := range people {
				person := &people[i]
				artifacts, err := gen.Generate(person, !skipSigning)
				if err != nil {
					failures++
					log.Printf("FAILED %s: %v", person.Email, err)
					continue
				}
				if _, _, err := gen.Save(person, artifacts); err != nil {
					failures++
					log.Printf("FAILED %s: %v", person.Email, err)
				}
			}

			log.Printf("generated %d/%d", len(people)-failures, len(people))
			if failures > 0 {
				return fmt.Errorf("%d pass(es) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "generate for a single person")
	cmd.Flags().BoolVar(&all, "all", false, "generate for everyone confirmed")
	cmd.Flags().StringVar(&dest, "dest", "", "output directory override")
	cmd.Flags().BoolVar(&skipSigning, "skip-signing", false, "emit QR badges only, no .pkpass")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list targets without generating")
	return cmd
}

func collectTargets(a *app, email string, all bool) ([]models.Person, error) {
	if email != "" {
		person, err := a.repo.PersonRepo.GetPersonByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("no person with email %s: %w", email, err)
		}
		return []models.Person{*person}, nil
	}

	const page = 200
	var confirmed []models.Person
	for offset := 0; ; offset += page {
		people, _, err := a.repo.PersonRepo.ListPeople(offset, page)
		if err != nil {
			return nil, err
		}
		if len(people) == 0 {
			break
		}
		for i := range people {
			if people[i].ConfirmedAt != nil {
				confirmed = append(confirmed, people[i])
			}
		}
		if len(people) < page {
			break
		}
	}
	return confirmed, nil
}
