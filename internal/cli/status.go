package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/coinquest/coinquest/internal/daemon"
)

// ─── Read-only CLI views ────────────────────────────────────────────────────
// These commands talk to a running daemon over its HTTP API.

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(tasksCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show balance, XP, and level",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var resp struct {
		Balance     int64   `json:"balance"`
		XP          int64   `json:"xp"`
		Level       int64   `json:"level"`
		ProgressPct float64 `json:"progress_pct"`
	}
	if err := apiGet("/api/state", &resp); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Balance:  %d coins\n", resp.Balance)
	fmt.Fprintf(os.Stdout, "Level:    %d (%.0f%% to next)\n", resp.Level, resp.ProgressPct)
	fmt.Fprintf(os.Stdout, "XP:       %d\n", resp.XP)
	return nil
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the cash-out view of the balance",
	RunE:  runWallet,
}

func runWallet(cmd *cobra.Command, args []string) error {
	var resp struct {
		Balance        int64   `json:"balance"`
		USDValue       float64 `json:"usd_value"`
		MinPayoutUSD   float64 `json:"min_payout_usd"`
		FeePercent     float64 `json:"fee_percent"`
		ProgressPct    float64 `json:"progress_pct"`
		PayoutUnlocked bool    `json:"payout_unlocked"`
		Methods        []struct {
			Name string `json:"name"`
		} `json:"methods"`
	}
	if err := apiGet("/api/wallet", &resp); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Balance:   %d coins ($%.2f)\n", resp.Balance, resp.USDValue)
	fmt.Fprintf(os.Stdout, "Payout:    min $%.2f, fee %.1f%%\n", resp.MinPayoutUSD, resp.FeePercent)
	if resp.PayoutUnlocked {
		fmt.Fprintln(os.Stdout, "Status:    ✅ payout unlocked")
	} else {
		fmt.Fprintf(os.Stdout, "Status:    %.0f%% of the way to payout\n", resp.ProgressPct)
	}
	for _, m := range resp.Methods {
		fmt.Fprintf(os.Stdout, "  • %s\n", m.Name)
	}
	return nil
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks and their states",
	RunE:  runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	var resp struct {
		Tasks []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Reward int64  `json:"reward"`
			Type   string `json:"type"`
			State  string `json:"state"`
		} `json:"tasks"`
	}
	if err := apiGet("/api/tasks", &resp); err != nil {
		return err
	}

	if len(resp.Tasks) == 0 {
		fmt.Fprintln(os.Stdout, "No tasks available.")
		return nil
	}
	for _, task := range resp.Tasks {
		marker := " "
		if task.State == "completed" {
			marker = "✅"
		}
		fmt.Fprintf(os.Stdout, "%s [%s] %-20s +%d coins (%s)\n", marker, task.ID, task.Title, task.Reward, task.Type)
	}
	return nil
}

// apiGet fetches a JSON document from the running daemon.
func apiGet(path string, v interface{}) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s — is 'coinquest serve' running? (%w)", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s for %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
