package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/velinov/fintrack/internal/domain"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fintrack-cli",
		Short: "FinTrack CLI tool",
		Long:  `A command line interface for interacting with the FinTrack API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FinTrack API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FINTRACK_TOKEN"), "Bearer token for authentication")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger maintenance operations",
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Apply due fixed expenses",
		Run: func(cmd *cobra.Command, args []string) {
			runSweep()
		},
	}

	var backfill bool
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Check stored balances against recomputed sums",
		Run: func(cmd *cobra.Command, args []string) {
			runAudit(backfill)
		},
	}
	auditCmd.Flags().BoolVar(&backfill, "backfill", false, "Rewrite drifted balances to the recomputed values")

	ledgerCmd.AddCommand(sweepCmd, auditCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Account commands
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}
	accountsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with current balances",
		Run: func(cmd *cobra.Command, args []string) {
			runAccountsList()
		},
	}
	accountsCmd.AddCommand(accountsListCmd)
	rootCmd.AddCommand(accountsCmd)

	// Recurring commands
	recurringCmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring template operations",
	}
	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show payments due within the next week",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/recurring/upcoming")
		},
	}
	postDueCmd := &cobra.Command{
		Use:   "post-due",
		Short: "Post due template occurrences",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/recurring/post-due")
		},
	}
	recurringCmd.AddCommand(upcomingCmd, postDueCmd)
	rootCmd.AddCommand(recurringCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runSweep() {
	body := request(http.MethodPost, "/api/v1/ledger/sweep")

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sweep complete, applied: %v\n", result["applied"])
}

func runAudit(backfill bool) {
	path := "/api/v1/ledger/audit"
	if backfill {
		path += "?backfill=true"
	}
	body := request(http.MethodGet, path)

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && consistent {
		fmt.Println("Audit PASSED: all balances consistent")
	} else {
		fmt.Println("Audit FAILED: drifted accounts found")
	}
	printJSON(result["accounts"])
}

func runAccountsList() {
	body := request(http.MethodGet, "/api/v1/accounts/")

	var accounts []struct {
		Name            string `json:"name"`
		Kind            string `json:"kind"`
		BalanceBGNCents int64  `json:"balance_bgn_cents"`
		BalanceEURCents int64  `json:"balance_eur_cents"`
	}
	if err := json.Unmarshal(body, &accounts); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	for _, a := range accounts {
		fmt.Printf("%-12s %-8s %s\n", a.Name, a.Kind, domain.FormatMoney(a.BalanceEURCents, a.BalanceBGNCents))
	}
}

func get(path string) {
	printBody(request(http.MethodGet, path))
}

func post(path string) {
	printBody(request(http.MethodPost, path))
}

func request(method, path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
		os.Exit(1)
	}

	return body
}

func printBody(body []byte) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(decoded)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render JSON: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
