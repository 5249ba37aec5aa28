package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"trident/browserswitch"
	"trident/engine"
	"trident/gateway"
	"trident/internal/analytics"
	"trident/threedsecure"
)

var (
	requestFile string
	nonce       string
	amount      string
	stateFile   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run one verification attempt",
	Long: `Run one verification attempt for a payment method nonce.

The request can come from flags (--nonce, --amount) or a YAML file
(--request). When the gateway demands a version 1 browser challenge, the
redirect URL is printed and the pending state is written to --state for a
later 'resume'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest()
		if err != nil {
			return err
		}

		client, recorder, err := buildClient()
		if err != nil {
			return err
		}
		ctx := context.Background()
		defer func() {
			if recorder != nil {
				_ = recorder.Close(ctx)
			}
		}()

		result, err := client.Verify(ctx, req)
		if err != nil {
			var canceled *threedsecure.UserCanceledError
			if errors.As(err, &canceled) {
				fmt.Println("verification canceled by the cardholder")
				return nil
			}
			return err
		}

		if result.Status == threedsecure.StatusBrowserChallenge {
			pending, err := result.BrowserChallenge.Pending.Marshal()
			if err != nil {
				return err
			}
			if err := os.WriteFile(stateFile, pending, 0o600); err != nil {
				return fmt.Errorf("could not persist pending state: %w", err)
			}
			fmt.Printf("browser challenge required; open:\n\n  %s\n\npending state written to %s\n",
				result.BrowserChallenge.RedirectURL, stateFile)
			return nil
		}

		return printResult(result)
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&requestFile, "request", "f", "", "YAML file describing the verification request")
	verifyCmd.Flags().StringVar(&nonce, "nonce", "", "payment method nonce to verify")
	verifyCmd.Flags().StringVar(&amount, "amount", "", "transaction amount, e.g. 10.00")
	verifyCmd.Flags().StringVar(&stateFile, "state", "pending-verification.json", "file for pending browser-challenge state")
}

func loadRequest() (threedsecure.VerificationRequest, error) {
	var req threedsecure.VerificationRequest
	if requestFile != "" {
		raw, err := os.ReadFile(requestFile)
		if err != nil {
			return req, fmt.Errorf("could not read request file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &req); err != nil {
			return req, fmt.Errorf("request file is not valid YAML: %w", err)
		}
	}
	if nonce != "" {
		req.Nonce = nonce
	}
	if amount != "" {
		req.Amount = amount
	}
	return req, nil
}

// buildClient wires the full stack from environment configuration. The
// returned recorder is nil when the gateway configuration exposes no
// analytics endpoint.
func buildClient() (*threedsecure.Client, *analytics.Recorder, error) {
	log := flowLogger()

	var gwOpts []gateway.Option
	gwOpts = append(gwOpts, gateway.WithLogger(log), gateway.WithConfigTTL(cfg.ConfigCacheTTL), gateway.WithTimeout(cfg.RequestTimeout))
	if cfg.GatewayBaseURL != "" {
		gwOpts = append(gwOpts, gateway.WithBaseURL(cfg.GatewayBaseURL))
	}
	gw, err := gateway.NewClient(cfg.Authorization, gwOpts...)
	if err != nil {
		return nil, nil, err
	}

	var engOpts []engine.Option
	engOpts = append(engOpts, engine.WithLogger(log), engine.WithTimeout(cfg.RequestTimeout))
	if cfg.EngineEndpoint != "" {
		engOpts = append(engOpts, engine.WithEndpoint(cfg.EngineEndpoint))
	}
	eng := engine.New(cfg.UserAgent, engOpts...)

	browser := browserswitch.New(printOpener, []string{cfg.ReturnURLScheme},
		browserswitch.WithLogger(log))

	opts := []threedsecure.Option{threedsecure.WithLogger(log)}
	recorder := buildRecorder(gw, log)
	if recorder != nil {
		opts = append(opts, threedsecure.WithAnalytics(recorder))
	}

	return threedsecure.New(gw, eng, browser, cfg.ReturnURLScheme, opts...), recorder, nil
}

func printResult(result *threedsecure.VerificationResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if result.Status == threedsecure.StatusAuthenticatedWithFallback {
		fmt.Fprintf(os.Stderr, "note: authentication failed (%s); the returned nonce is usable but carries no liability shift\n",
			result.FallbackReason)
	}
	return nil
}

// printOpener stands in for a platform browser launcher: it prints the URL
// for the operator to open.
func printOpener(_ context.Context, rawURL string) error {
	fmt.Printf("open in a browser: %s\n", rawURL)
	return nil
}
