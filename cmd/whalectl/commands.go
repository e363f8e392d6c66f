package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL  string
	secret  string
	timeout time.Duration
}

func (o *options) client() *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(o.apiURL, "/")).
		SetTimeout(o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "whalectl",
		Short: "Operate a whale alerts deployment",
		Long: `whalectl sends manual sighting broadcasts and inspects the bot's state.

Available subcommands:
  send  - Broadcast a sighting to every active subscriber
  debug - Show the latest sighting, subscriber count and admin record`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("WHALES_API_URL", "http://localhost:8080"), "base URL of the deployment")
	root.PersistentFlags().StringVar(&opts.secret, "secret", "", "shared secret for the endpoint (defaults to SEND_MESSAGE_SECRET or DEBUG_URL_SECRET)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(newSendCmd(opts), newDebugCmd(opts))
	return root
}

type sendRequest struct {
	Secret     string `json:"secret"`
	FromName   string `json:"fromName"`
	Details    string `json:"details"`
	When       int64  `json:"when"`
	ReallySend bool   `json:"reallySend"`
}

func newSendCmd(opts *options) *cobra.Command {
	var (
		fromName   string
		details    string
		at         string
		reallySend bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Broadcast a sighting to every active subscriber",
		Long: `Broadcast a sighting by hand. Without --really-send the server only
reports how many subscribers would get the text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
				when = parsed
			}

			resp, err := opts.client().R().
				SetHeader("Content-Type", "application/json").
				SetBody(sendRequest{
					Secret:     secretOr(opts.secret, "SEND_MESSAGE_SECRET"),
					FromName:   fromName,
					Details:    details,
					When:       when.UnixMilli(),
					ReallySend: reallySend,
				}).
				Post("/api/sendmessage")
			if err != nil {
				return fmt.Errorf("failed to reach %s: %w", opts.apiURL, err)
			}
			if resp.IsError() {
				return fmt.Errorf("send rejected (%d): %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
			}

			return printJSON(cmd, resp.Body())
		},
	}

	cmd.Flags().StringVar(&fromName, "from", "", "reporter name shown in the alert")
	cmd.Flags().StringVar(&details, "details", "", "where the whale was seen")
	cmd.Flags().StringVar(&at, "at", "", "sighting time (RFC3339), defaults to now")
	cmd.Flags().BoolVar(&reallySend, "really-send", false, "actually text subscribers instead of a dry run")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("details")
	return cmd
}

func newDebugCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Show the latest sighting, subscriber count and admin record",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().R().
				SetPathParam("secret", secretOr(opts.secret, "DEBUG_URL_SECRET")).
				Get("/api/debug/{secret}")
			if err != nil {
				return fmt.Errorf("failed to reach %s: %w", opts.apiURL, err)
			}
			if resp.IsError() {
				return fmt.Errorf("debug rejected (%d): %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
			}

			return printJSON(cmd, resp.Body())
		},
	}
}

// printJSON pretty-prints a JSON body, falling back to the raw text
func printJSON(cmd *cobra.Command, body []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}

func secretOr(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
