package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/five82/crux/internal/capture"
	"github.com/five82/crux/internal/gateway"
)

var climbsPage int

// routesCmd groups route calls.
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Route analysis calls",
}

var routesUploadCmd = &cobra.Command{
	Use:   "upload <route-id> <image>",
	Short: "Attach a wall photo to an existing route",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		prepared, err := capture.Prepare(raw, rt.Config.Capture)
		if err != nil {
			return fmt.Errorf("prepare image: %w", err)
		}
		route, err := rt.Client.UploadRouteImage(cmd.Context(), args[0], gateway.Image{
			Data:     prepared.Data,
			Filename: capture.NewFilename(),
			MIMEType: capture.MIMEType,
		})
		if err != nil {
			return apiError(err)
		}
		return printJSON(route)
	},
}

var routesAnalyzeCmd = &cobra.Command{
	Use:   "analyze <route-id>",
	Short: "Request analysis of a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		resp, err := rt.Client.RequestRouteAnalysis(cmd.Context(), args[0])
		if err != nil {
			return apiError(err)
		}
		return printJSON(resp)
	},
}

var routesAnalysisCmd = &cobra.Command{
	Use:   "analysis <route-id>",
	Short: "Show a route's analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		analysis, err := rt.Client.RouteAnalysis(cmd.Context(), args[0])
		if err != nil {
			return apiError(err)
		}
		return printJSON(analysis)
	},
}

// climbsCmd groups climb calls.
var climbsCmd = &cobra.Command{
	Use:   "climbs",
	Short: "Climb history calls",
}

var climbsListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's analysed climbs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		climbs, err := rt.Client.UserClimbs(cmd.Context(), args[0], climbsPage)
		if err != nil {
			return apiError(err)
		}
		return printJSON(climbs)
	},
}

var climbsAnalysisCmd = &cobra.Command{
	Use:   "analysis <climb-id>",
	Short: "Show a climb's analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		analysis, err := rt.Client.ClimbAnalysis(cmd.Context(), args[0])
		if err != nil {
			return apiError(err)
		}
		return printJSON(analysis)
	},
}

var climbsUploadCmd = &cobra.Command{
	Use:   "upload <climb-id> <user-id> <video>",
	Short: "Upload an mp4 of a climb attempt",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		video, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("read video: %w", err)
		}
		climb, err := rt.Client.UploadClimbVideo(cmd.Context(), args[0], args[1], video, filepath.Base(args[2]))
		if err != nil {
			return apiError(err)
		}
		return printJSON(climb)
	},
}

func init() {
	routesCmd.AddCommand(routesUploadCmd, routesAnalyzeCmd, routesAnalysisCmd)
	climbsCmd.AddCommand(climbsListCmd, climbsAnalysisCmd, climbsUploadCmd)
	climbsListCmd.Flags().IntVar(&climbsPage, "page", 1, "page number, starting at 1")
}

func apiError(err error) error {
	return errors.New(gateway.Message(err))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
