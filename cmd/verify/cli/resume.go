package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trident/browserswitch"
	"trident/gateway"
	"trident/internal/analytics"
	"trident/internal/device"
	"trident/threedsecure"
)

var (
	resumeStateFile   string
	resumeCallbackURL string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Finish a verification after the browser round trip",
	Long: `Finish a version 1 verification: reads the pending state written by
'verify' and the callback URL the browser returned with, and completes the
attempt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(resumeStateFile)
		if err != nil {
			return fmt.Errorf("could not read pending state: %w", err)
		}
		pending, err := threedsecure.UnmarshalPendingVerification(raw)
		if err != nil {
			return err
		}
		returnQuery, err := browserswitch.ParseReturn(resumeCallbackURL)
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

		result, err := client.Resume(ctx, pending, returnQuery)
		if err != nil {
			if threedsecure.IsUserCanceled(err) {
				fmt.Println("verification canceled: the browser returned without a completed challenge")
				return nil
			}
			return err
		}
		return printResult(result)
	},
}

func init() {
	resumeCmd.Flags().StringVar(&resumeStateFile, "state", "pending-verification.json", "pending state written by 'verify'")
	resumeCmd.Flags().StringVar(&resumeCallbackURL, "callback-url", "", "full callback URL the browser returned with")
	_ = resumeCmd.MarkFlagRequired("callback-url")
}

// buildRecorder wires the analytics uploader when the gateway exposes an
// analytics endpoint. Best effort: verification proceeds without analytics
// when this fails.
func buildRecorder(gw *gateway.Client, log *slog.Logger) *analytics.Recorder {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conf, err := gw.Configuration(ctx)
	if err != nil || conf.AnalyticsURL == "" {
		return nil
	}
	meta := device.NewCollector(cfg.UserAgent).Collect()
	return analytics.NewRecorder(conf.AnalyticsURL, cfg.Authorization, meta,
		analytics.WithLogger(log))
}
