package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trident/gateway"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Fetch and print the merchant's gateway configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []gateway.Option
		opts = append(opts, gateway.WithLogger(flowLogger()))
		if cfg.GatewayBaseURL != "" {
			opts = append(opts, gateway.WithBaseURL(cfg.GatewayBaseURL))
		}
		gw, err := gateway.NewClient(cfg.Authorization, opts...)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		conf, err := gw.Configuration(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(conf, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
