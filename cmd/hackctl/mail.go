package main

import (
	"fmt"
	"log"
	"time"

	"hackathon-management-backend/internal/services"

	"github.com/spf13/cobra"
)

// expiryFromFlags resolves the mutually exclusive -d/-e flags into a concrete
// expiry. Both empty means the caller wants the default lifetime.
func expiryFromFlags(days int, expiry string) (time.Time, error) {
	if days > 0 && expiry != "" {
		return time.Time{}, fmt.Errorf("use either --days or --expires-at, not both")
	}
	if days > 0 {
		t := time.Now().AddDate(0, 0, days)
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location()), nil
	}
	if expiry != "" {
		return time.Parse(time.RFC3339, expiry)
	}
	return time.Time{}, nil
}

func formatBulkReport(report *services.BulkMailReport) string {
	return fmt.Sprintf("planned=%d sent=%d failed=%d reused-tokens=%d halted=%v",
		len(report.Planned), len(report.Sent), len(report.Failed),
		report.ExistingTokens, report.Halted)
}

func newSendConfirmationsCmd(a *app) *cobra.Command {
	var (
		days   int
		expiry string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "send-confirmations",
		Short: "Mail a confirmation link to everyone accepted but undecided",
		RunE: func(cmd *cobra.Command, args []string) error {
			expiresAt, err := expiryFromFlags(days, expiry)
			if err != nil {
				return err
			}

			report, err := a.lifecycleService().SendConfirmations(cmd.Context(), expiresAt, dryRun)
			if report != nil {
				log.Print(formatBulkReport(report))
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "token lifetime in days, clamped to end of day")
	cmd.Flags().StringVarP(&expiry, "expires-at", "e", "", "absolute token expiry (RFC 3339)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be sent without mailing")
	return cmd
}

func newResendVerificationCmd(a *app) *cobra.Command {
	var (
		days   int
		expiry string
	)

	cmd := &cobra.Command{
		Use:   "resend-verification <email>",
		Short: "Re-send the verification link to one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expiresAt, err := expiryFromFlags(days, expiry)
			if err != nil {
				return err
			}
			if err := a.registrationService().ResendVerification(args[0], expiresAt); err != nil {
				return err
			}
			log.Printf("verification mail sent to %s", args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "token lifetime in days, clamped to end of day")
	cmd.Flags().StringVarP(&expiry, "expires-at", "e", "", "absolute token expiry (RFC 3339)")
	return cmd
}

func newResendConfirmationCmd(a *app) *cobra.Command {
	var (
		days   int
		expiry string
	)

	cmd := &cobra.Command{
		Use:   "resend-confirmation <email>",
		Short: "Re-send the confirmation link to one accepted person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expiresAt, err := expiryFromFlags(days, expiry)
			if err != nil {
				return err
			}
			if err := a.lifecycleService().ResendConfirmation(args[0], expiresAt); err != nil {
				return err
			}
			log.Printf("confirmation mail sent to %s", args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "token lifetime in days, clamped to end of day")
	cmd.Flags().StringVarP(&expiry, "expires-at", "e", "", "absolute token expiry (RFC 3339)")
	return cmd
}
