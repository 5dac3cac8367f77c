package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmawatch/ae-console/internal/bootstrap"
	"github.com/pharmawatch/ae-console/internal/config"
	"github.com/pharmawatch/ae-console/internal/core/domain"
	"github.com/pharmawatch/ae-console/internal/core/usecase"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ae-console",
		Short:         "Adverse event review console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(analyzePDFCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(healthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() (*bootstrap.App, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	go func() { _ = app.ServeMetrics() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return app, ctx, stop, nil
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			session, err := app.Sessions.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if session.User != nil {
				fmt.Printf("Logged in as %s\n", session.User.Username)
			} else {
				fmt.Println("Logged in.")
			}
			return nil
		},
	}
	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a reviewer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			user, err := app.Sessions.Signup(ctx, username, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Account created for %s. Log in to continue.\n", user.Username)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			if err := app.Sessions.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current validated identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			session, err := app.Sessions.EnsureAuthenticated(ctx)
			if err != nil {
				return fmt.Errorf("not logged in; run 'ae-console login'")
			}
			fmt.Printf("%s", session.User.Username)
			if session.User.Email != "" {
				fmt.Printf(" <%s>", session.User.Email)
			}
			fmt.Println()
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit a manually entered adverse event case",
		RunE: func(cmd *cobra.Command, args []string) error {
			drug, _ := cmd.Flags().GetString("drug")
			event, _ := cmd.Flags().GetString("event")
			export, _ := cmd.Flags().GetBool("export")
			exportXLSX, _ := cmd.Flags().GetBool("export-xlsx")

			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			result, err := app.Workflow.SubmitManual(ctx, drug, event)
			if err != nil {
				if msg := app.Workflow.State().VisibleError(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return err
			}
			return printAndExport(app, result, export, exportXLSX)
		},
	}
	cmd.Flags().String("drug", "", "Drug name")
	cmd.Flags().String("event", "", "Adverse event description")
	cmd.Flags().Bool("export", false, "Write the plain-text case report")
	cmd.Flags().Bool("export-xlsx", false, "Write the spreadsheet supplement")
	return cmd
}

func analyzePDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze-pdf <file>",
		Short: "Submit a case report document for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetString("drug")
			export, _ := cmd.Flags().GetBool("export")
			exportXLSX, _ := cmd.Flags().GetBool("export-xlsx")

			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			app.Workflow.SetActiveMode(domain.ModeDocument)
			result, err := app.Workflow.SubmitDocument(ctx, args[0], override)
			if err != nil {
				if msg := app.Workflow.State().VisibleError(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return err
			}
			return printAndExport(app, result, export, exportXLSX)
		},
	}
	cmd.Flags().String("drug", "", "Drug name override when document extraction is unreliable")
	cmd.Flags().Bool("export", false, "Write the plain-text case report")
	cmd.Flags().Bool("export-xlsx", false, "Write the spreadsheet supplement")
	return cmd
}

func printAndExport(app *bootstrap.App, result *domain.AnalysisResult, export, exportXLSX bool) error {
	state := app.Workflow.State()
	fmt.Print(usecase.RenderCaseReport(result, state.SimilarCases))

	if export {
		path, err := app.Exporter.ExportText(result, state.SimilarCases)
		if err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", path)
	}
	if exportXLSX {
		path, err := app.Exporter.ExportWorkbook(result, state.SimilarCases)
		if err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", path)
	}
	return nil
}

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Look up drug name suggestions for a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			// The controller resolves asynchronously; a one-shot command
			// just waits for the first update.
			updates := make(chan domain.SuggestionSet, 1)
			app.Suggestions.SetOnUpdate(func(set domain.SuggestionSet) {
				select {
				case updates <- set:
				default:
				}
			})
			app.Suggestions.SetInput(ctx, args[0])

			select {
			case set := <-updates:
				if len(set.Suggestions) == 0 {
					fmt.Println("No suggestions.")
					return nil
				}
				for _, s := range set.Suggestions {
					fmt.Println(s)
				}
			case <-time.After(10 * time.Second):
				return fmt.Errorf("suggestion lookup timed out")
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List historical analysis decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			risk, _ := cmd.Flags().GetString("risk")
			escalated, _ := cmd.Flags().GetBool("escalated")

			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			if limit <= 0 {
				limit = app.Config.AuditLimit
			}
			records, err := app.Audit.Fetch(ctx, domain.AuditQuery{
				Limit:         limit,
				Offset:        offset,
				RiskLevel:     domain.RiskLevel(risk),
				EscalatedOnly: escalated,
			})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No audit records.")
				return nil
			}

			fmt.Printf("%-20s %-12s %-16s %-10s %-8s %s\n", "TIMESTAMP", "REPORT", "DRUG", "PREDICTION", "RISK", "DECISION")
			for _, r := range records {
				fmt.Printf("%-20s %-12s %-16s %-10s %-8s %s\n",
					r.Timestamp, r.ReportID, r.Drugname, r.MLPrediction, r.RiskLevel, r.EscalationDecision)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum records to fetch")
	cmd.Flags().Int("offset", 0, "Records to skip")
	cmd.Flags().String("risk", "", "Filter by risk level (LOW, MEDIUM, HIGH, CRITICAL)")
	cmd.Flags().Bool("escalated", false, "Only escalated cases")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := newApp()
			if err != nil {
				return err
			}
			defer stop()

			health, err := app.Gateway.Healthz(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Status    : %s\n", health.Status)
			fmt.Printf("Model     : %s\n", loadedStr(health.ModelLoaded))
			fmt.Printf("LLM       : %s\n", availableStr(health.LLMAvailable))
			fmt.Printf("Database  : %s\n", connectedStr(health.DatabaseConnected))
			if health.ReasoningAvail != nil {
				fmt.Printf("Reasoning : %s\n", availableStr(*health.ReasoningAvail))
			}
			return nil
		},
	}
}

func loadedStr(v bool) string {
	if v {
		return "loaded"
	}
	return "not loaded"
}

func availableStr(v bool) string {
	if v {
		return "available"
	}
	return "unavailable"
}

func connectedStr(v bool) string {
	if v {
		return "connected"
	}
	return "disconnected"
}
