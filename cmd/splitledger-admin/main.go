// ABOUTME: Operator CLI for splitledger status and ledger inspection
// ABOUTME: Displays server health and the transaction ledger over the HTTP API

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

type Transaction struct {
	Description  string `json:"description"`
	Date         string `json:"date"`
	Owner        int64  `json:"owner"`
	Participants string `json:"participants"`
	Price        int64  `json:"price"`
}

const banner = `
           _ _ _   _          _                          _           _
 ___ _ __ | (_) |_| | ___  __| | __ _  ___ _ __     __ _| |_ __ ___ (_)_ __
/ __| '_ \| | | __| |/ _ \/ _' |/ _' |/ _ \ '__|   / _' | ' _ ' _ \| | '_ \
\__ \ |_) | | | |_| |  __/ (_| | (_| |  __/ |     | (_| | |  | | | | | | | |
|___/ .__/|_|_|\__|_|\___|\__,_|\__, |\___|_|      \__,_|_|  |_| |_|_|_| |_|
    |_|                         |___/
`

func main() {
	server := flag.String("server", getEnv("SPLITLEDGER_HTTP", "http://localhost:8080"), "Server HTTP URL")
	credential := flag.String("credential", os.Getenv("SPLITLEDGER_CREDENTIAL"), "Token, or username when -password is set")
	password := flag.String("password", os.Getenv("SPLITLEDGER_PASSWORD"), "Password (ignored when -credential holds a token)")
	watch := flag.Bool("watch", false, "Continuously watch server status")
	interval := flag.Duration("interval", 2*time.Second, "Watch interval (with -watch)")
	flag.Parse()

	baseURL := strings.TrimSuffix(*server, "/")

	if *watch {
		runWatch(baseURL, *credential, *password, *interval)
		return
	}

	printStatus(baseURL, *credential, *password)
}

func printStatus(baseURL, credential, password string) {
	fmt.Print(banner)

	printHealth(baseURL)
	fmt.Println()

	printTransactions(baseURL, credential, password)
	fmt.Println()
}

func runWatch(baseURL, credential, password string, interval time.Duration) {
	// Clear screen and hide cursor
	fmt.Print("\033[2J\033[H\033[?25l")
	defer fmt.Print("\033[?25h") // Show cursor on exit

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Move cursor to top
		fmt.Print("\033[H")
		printStatus(baseURL, credential, password)
		fmt.Printf("  [watching every %v - press Ctrl+C to stop]\n", interval)

		<-ticker.C
	}
}

func printHealth(baseURL string) {
	fmt.Println("  Health")
	fmt.Println("  ------")

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		fmt.Printf("  Server:  UNREACHABLE (%v)\n", err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("  Server:  OK\n")
	} else {
		fmt.Printf("  Server:  ERROR (status %d)\n", resp.StatusCode)
	}

	resp, err = http.Get(baseURL + "/health/ready")
	if err != nil {
		fmt.Printf("  Ready:   UNKNOWN\n")
		return
	}
	defer resp.Body.Close()

	var body [256]byte
	n, _ := resp.Body.Read(body[:])
	status := strings.TrimSpace(string(body[:n]))

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("  Ready:   %s\n", status)
	} else {
		fmt.Printf("  Ready:   NOT READY (%s)\n", status)
	}
}

func printTransactions(baseURL, credential, password string) {
	fmt.Println("  Transactions")
	fmt.Println("  ------------")

	if credential == "" {
		fmt.Println("  (set -credential to list transactions)")
		return
	}

	req, err := http.NewRequest(http.MethodGet, baseURL+"/transactions", nil)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	req.SetBasicAuth(credential, password)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		fmt.Println("  (credentials rejected)")
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  Error: status %d\n", resp.StatusCode)
		return
	}

	var txns map[string]Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		fmt.Printf("  Error decoding response: %v\n", err)
		return
	}

	if len(txns) == 0 {
		fmt.Println("  (ledger is empty)")
		return
	}

	// Sort ids numerically for stable output
	ids := make([]int64, 0, len(txns))
	for k := range txns {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tDESCRIPTION\tDATE\tOWNER\tPARTICIPANTS\tPRICE")
	fmt.Fprintln(w, "  --\t-----------\t----\t-----\t------------\t-----")
	for _, id := range ids {
		t := txns[strconv.FormatInt(id, 10)]
		desc := t.Description
		if len(desc) > 32 {
			desc = desc[:29] + "..."
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%s\t%d\n", id, desc, t.Date, t.Owner, t.Participants, t.Price)
	}
	w.Flush()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
