package main

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payflow-cli",
		Short: "PayFlow CLI tool",
		Long:  `A command line interface for interacting with the PayFlow API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PayFlow API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT access token (or set PAYFLOW_TOKEN)")

	registerCmd := &cobra.Command{
		Use:   "register <email> <name> <password>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			register(args[0], args[1], args[2])
		},
	}

	loginCmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and print an access token",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			login(args[0], args[1])
		},
	}

	var idemKey string
	var description string

	transferCmd := &cobra.Command{
		Use:   "transfer <recipient-email> <amount>",
		Short: "Send money to another account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			transfer(args[0], args[1], idemKey, description)
		},
	}
	transferCmd.Flags().StringVar(&idemKey, "idempotency-key", "", "Idempotency key (generated when empty)")
	transferCmd.Flags().StringVar(&description, "description", "", "Transfer description")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show current balance",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/balance")
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List transfer history",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/transfers")
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/me")
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show transfer statistics",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/stats")
		},
	}

	rootCmd.AddCommand(registerCmd, loginCmd, transferCmd, balanceCmd, historyCmd, whoamiCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func authToken() string {
	if token != "" {
		return token
	}
	return os.Getenv("PAYFLOW_TOKEN")
}

func register(email, name, password string) {
	payload := map[string]string{"email": email, "name": name, "password": password}
	body := doRequest(http.MethodPost, "/api/v1/auth/register", payload, nil)
	printJSON(body)
}

func login(email, password string) {
	payload := map[string]string{"email": email, "password": password}
	body := doRequest(http.MethodPost, "/api/v1/auth/login", payload, nil)
	printJSON(body)
}

func transfer(recipientEmail, amount, key, description string) {
	if key == "" {
		key = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		fmt.Printf("Idempotency-Key: %s\n", key)
	}

	payload := map[string]string{
		"recipient_email": recipientEmail,
		"amount":          amount,
	}
	if description != "" {
		payload["description"] = description
	}

	headers := map[string]string{"Idempotency-Key": key}
	body := doRequest(http.MethodPost, "/api/v1/transfers", payload, headers)
	printJSON(body)
}

func getJSON(path string) {
	body := doRequest(http.MethodGet, path, nil, nil)
	printJSON(body)
}

func doRequest(method, path string, payload any, headers map[string]string) []byte {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	if t := authToken(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if replay := resp.Header.Get("X-Idempotency-Replay"); replay == "true" {
		fmt.Println("Replayed: true")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func printJSON(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(out.String())
}
