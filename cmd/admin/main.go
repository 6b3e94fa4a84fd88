package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sanadhub/ijazahserver/internal/config"
	"github.com/sanadhub/ijazahserver/internal/db"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/issue"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/policy"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

var (
	configPath string
	cfg        *config.Config
	database   *db.DB
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Ijazah Certificate Server administration tool",
	Long:  "Administrative tool for issuing certificates and inspecting verification audit trails",
}

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Manage certificates",
}

var certIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new certificate",
	RunE:  issueCert,
}

var certListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued certificates",
	RunE:  listCerts,
}

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List verification attempts",
	RunE:  listAttempts,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new profile",
	RunE:  createProfile,
}

var (
	studentName  string
	issueDate    string
	issuePlace   string
	narration    string
	ijazahType   string
	recitation   string
	manualNumber string
	scheme       string
	profileID    string
	listLimit    int

	profileName    string
	profileTeacher string
)

func init() {
	// Root flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/ijazah/config.yaml", "Config file path")

	// Cert issue flags
	certIssueCmd.Flags().StringVar(&studentName, "student", "", "Student name (required)")
	certIssueCmd.Flags().StringVar(&issueDate, "date", "", "Issue date, YYYY-MM-DD (required)")
	certIssueCmd.Flags().StringVar(&issuePlace, "place", "", "Issue place (required)")
	certIssueCmd.Flags().StringVar(&narration, "narration", "", "Narration details")
	certIssueCmd.Flags().StringVar(&ijazahType, "type", "", "Ijazah type (required)")
	certIssueCmd.Flags().StringVar(&recitation, "recitation", "", "Recitation (required)")
	certIssueCmd.Flags().StringVar(&manualNumber, "number", "", "Manually chosen certificate number")
	certIssueCmd.Flags().StringVar(&scheme, "scheme", models.SchemeDerived, "Numbering scheme: derived or sequential")
	certIssueCmd.Flags().StringVar(&profileID, "profile", "", "Linked profile ID")

	certIssueCmd.MarkFlagRequired("student")
	certIssueCmd.MarkFlagRequired("date")
	certIssueCmd.MarkFlagRequired("place")
	certIssueCmd.MarkFlagRequired("type")
	certIssueCmd.MarkFlagRequired("recitation")

	// List flags
	certListCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum records to list")
	attemptsCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum records to list")

	// Profile create flags
	profileCreateCmd.Flags().StringVar(&profileName, "name", "", "Full name (required)")
	profileCreateCmd.Flags().StringVar(&profileTeacher, "teacher", "", "Certifying teacher name")
	profileCreateCmd.MarkFlagRequired("name")

	// Add commands
	certCmd.AddCommand(certIssueCmd)
	certCmd.AddCommand(certListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initDB() error {
	// Load configuration
	var err error
	cfg, err = config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Connect to database
	database, err = db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func issueCert(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	certRepo := repository.NewCertificateRepository(database.DB)
	validator := policy.NewValidator(cfg)
	allocator := serial.NewAllocator(cfg.Serial.Prefix, certRepo)
	defaultPattern := pattern.Config{
		Family:       cfg.Pattern.Family,
		PrimaryColor: cfg.Pattern.PrimaryColor,
		Opacity:      cfg.Pattern.Opacity,
	}
	issuer := issue.NewService(certRepo, allocator, validator, cfg.Fingerprint.Secret, defaultPattern)

	cert, err := issuer.Issue(context.Background(), &models.CertificateDraft{
		StudentName:  studentName,
		IssueDate:    issueDate,
		IssuePlace:   issuePlace,
		Narration:    narration,
		IjazahType:   ijazahType,
		Recitation:   recitation,
		ManualNumber: manualNumber,
		Scheme:       scheme,
		ProfileID:    profileID,
	})
	if err != nil {
		return fmt.Errorf("failed to issue certificate: %w", err)
	}

	fmt.Printf("\nCertificate issued successfully!\n")
	fmt.Printf("ID:          %s\n", cert.ID)
	fmt.Printf("Number:      %s\n", cert.CertificateNumber)
	fmt.Printf("Fingerprint: %s\n", cert.Fingerprint)
	fmt.Printf("Issue date:  %s\n", cert.IssueDate)
	fmt.Printf("Status:      %s\n", cert.Status)
	fmt.Printf("\nVerification URL: %s/v1/verify?number=%s\n", cfg.Server.PublicBaseURL, cert.CertificateNumber)

	return nil
}

func listCerts(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	certRepo := repository.NewCertificateRepository(database.DB)
	certs, err := certRepo.List(context.Background(), listLimit)
	if err != nil {
		return fmt.Errorf("failed to list certificates: %w", err)
	}

	if len(certs) == 0 {
		fmt.Println("No certificates found")
		return nil
	}

	fmt.Printf("\nTotal certificates: %d\n\n", len(certs))
	fmt.Printf("%-16s %-12s %-10s %-8s %s\n", "Number", "Issue Date", "Status", "Verified", "Student")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, cert := range certs {
		fmt.Printf("%-16s %-12s %-10s %-8d %s\n",
			cert.CertificateNumber,
			cert.IssueDate,
			cert.Status,
			cert.VerificationCount,
			cert.Metadata[models.MetaStudentName],
		)
	}

	return nil
}

func listAttempts(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	attemptRepo := repository.NewAttemptRepository(database.DB)
	attempts, err := attemptRepo.List(context.Background(), "", nil, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}

	if len(attempts) == 0 {
		fmt.Println("No verification attempts found")
		return nil
	}

	fmt.Printf("\nTotal attempts: %d\n\n", len(attempts))
	fmt.Printf("%-20s %-8s %-8s %-22s %s\n", "Timestamp", "Method", "Success", "Failure Reason", "Certificate ID")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, attempt := range attempts {
		fmt.Printf("%-20s %-8s %-8s %-22s %s\n",
			attempt.Timestamp.Format("2006-01-02 15:04:05"),
			attempt.Method,
			strconv.FormatBool(attempt.Success),
			attempt.FailureReason,
			attempt.CertificateID,
		)
	}

	return nil
}

func createProfile(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	profileRepo := repository.NewProfileRepository(database.DB)
	profile := &models.Profile{
		ID:          uuid.NewString(),
		FullName:    profileName,
		TeacherName: profileTeacher,
	}

	if err := profileRepo.Create(context.Background(), profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	fmt.Printf("\nProfile created successfully!\n")
	fmt.Printf("ID:      %s\n", profile.ID)
	fmt.Printf("Name:    %s\n", profile.FullName)
	if profile.TeacherName != "" {
		fmt.Printf("Teacher: %s\n", profile.TeacherName)
	}

	return nil
}
