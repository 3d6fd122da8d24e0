// hackctl is the operator CLI: migrations, bulk mail dispatch, wallet pass
// generation and roster exports, run from a shell next to the server.
package main

import (
	"log"
	"os"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/mailer"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/repositories"
	"hackathon-management-backend/internal/services"
	"hackathon-management-backend/internal/utils"
	"hackathon-management-backend/pkg/database"
	"hackathon-management-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app bundles everything a subcommand may need. Built once in the root
// PersistentPreRunE so each command body stays small.
type app struct {
	cfg  *config.Config
	db   *gorm.DB
	repo *repositories.Repository
}

func (a *app) tokenService() *services.TokenService {
	return services.NewTokenService(a.repo.TokenRepo)
}

func (a *app) registrationService() *services.RegistrationService {
	return services.NewRegistrationService(
		a.repo.PersonRepo, a.repo.TokenRepo, a.tokenService(),
		mailer.NewSMTPSender(a.cfg), a.cfg,
	)
}

func (a *app) lifecycleService() *services.LifecycleService {
	return services.NewLifecycleService(
		a.repo.PersonRepo, a.repo.TokenRepo, a.tokenService(),
		mailer.NewSMTPSender(a.cfg), a.cfg,
	)
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "hackctl",
		Short:         "Operator tooling for the hackathon backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("Warning: .env file not found: %v", err)
			}
			logger.Init()

			cfg, err := config.NewConfigFromEnv()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.db = db
			a.repo = repositories.NewRepository(db)
			return nil
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newSendConfirmationsCmd(a),
		newResendVerificationCmd(a),
		newResendConfirmationCmd(a),
		newGeneratePassesCmd(a),
		newExportCSVCmd(a),
		newChangeEmailCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed the default admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repositories.AutoMigrate(a.db); err != nil {
				return err
			}
			log.Println("✅ Database migrations completed successfully")

			if err := createDefaultAdmin(a.db); err != nil {
				return err
			}
			log.Println("🎉 Migration process completed!")
			return nil
		},
	}
}

func createDefaultAdmin(db *gorm.DB) error {
	adminEmail := "admin@hackathon.local"
	adminPassword := "admin123"

	var existingAdmin models.User
	if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Println("ℹ️  Default admin user already exists")
		return nil
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    adminEmail,
		Password: hashedPassword,
		Role:     "admin",
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Default admin user created:")
	log.Printf("   Email: %s", adminEmail)
	log.Printf("   Password: %s (change it)", adminPassword)
	return nil
}
