package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/crux/internal/gateway"
)

var (
	setAPIKey    string
	clearBackend bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the backend answers its health endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		base := rt.Client.Endpoint().BaseURL()
		if err := rt.Client.Probe(cmd.Context()); err != nil {
			rt.Logger.Debug("probe failed", zap.String("endpoint", base), zap.Error(err))
			return fmt.Errorf("%s unreachable: %s", base, gateway.Message(err))
		}
		fmt.Printf("%s reachable\n", base)
		return nil
	},
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Fetch the backend's OpenAPI schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		base := rt.Client.Endpoint().BaseURL()
		data, err := rt.Client.OpenAPI(cmd.Context())
		if err != nil {
			return fmt.Errorf("connection to %s failed: %s", base, gateway.Message(err))
		}
		fmt.Printf("Connected to %s (%d byte schema)\n", base, len(data))
		return nil
	},
}

var setBackendCmd = &cobra.Command{
	Use:   "set-backend [address]",
	Short: "Save a backend override used by later runs",
	Long: `Saves the backend address (and optionally an API key) to the prefs file.
The override sits below --backend and CRUX_BACKEND_URL and above the config
file. Run with --clear to remove it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		if clearBackend {
			if err := rt.Prefs.Clear(); err != nil {
				return fmt.Errorf("clear override: %w", err)
			}
			fmt.Printf("Override cleared, using %s\n", rt.Resolver.Resolve().BaseURL())
			return nil
		}
		if len(args) == 0 && !cmd.Flags().Changed("key") {
			return fmt.Errorf("address required (or --key / --clear)")
		}
		if len(args) == 1 {
			if err := rt.Prefs.SetBackend(args[0]); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("key") {
			if err := rt.Prefs.SetAPIKey(setAPIKey); err != nil {
				return err
			}
		}
		fmt.Printf("Backend override saved, now using %s\n", rt.Resolver.Resolve().BaseURL())
		return nil
	},
}

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Print the backend endpoint requests would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		ep := rt.Resolver.Resolve()
		key := "none"
		if ep.APIKey != "" {
			key = "set"
		}
		fmt.Printf("%s (api key: %s)\n", ep.BaseURL(), key)
		return nil
	},
}

func init() {
	setBackendCmd.Flags().StringVar(&setAPIKey, "key", "", "API key to save with the override (empty clears it)")
	setBackendCmd.Flags().BoolVar(&clearBackend, "clear", false, "remove the saved override")
}
