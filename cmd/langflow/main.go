// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// langflow is a CLI client for a running flowserver. It submits flow runs,
// polls task status, and inspects the component catalog.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbarsoum1/langflow/pkg/logging"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

var (
	serverURL  string
	apiKey     string
	sessionID  string
	tweaksJSON string
	inputsJSON string
	clearCache bool
	async      bool

	logger = logging.Default()

	rootCmd = &cobra.Command{
		Use:   "langflow",
		Short: "A client for the langflow flow execution server",
	}

	runCmd = &cobra.Command{
		Use:   "run [flow-id]",
		Short: "Run a stored flow and print the result",
		Long: `Submits the flow for evaluation. With --async the command returns the
task id immediately; poll it with "langflow status".`,
		Args: cobra.ExactArgs(1),
		Run:  runFlow,
	}

	statusCmd = &cobra.Command{
		Use:   "status [task-id]",
		Short: "Show the status of a dispatched task",
		Args:  cobra.ExactArgs(1),
		Run:   runStatus,
	}

	componentsCmd = &cobra.Command{
		Use:   "components",
		Short: "List the component catalog category by category",
		Run:   runComponents,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show the server version",
		Run:   runVersion,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("LANGFLOW_SERVER", "http://localhost:7860"), "flowserver base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key",
		os.Getenv("LANGFLOW_API_KEY"), "API key sent as x-api-key")

	runCmd.Flags().StringVar(&sessionID, "session", "", "session id to continue")
	runCmd.Flags().StringVar(&tweaksJSON, "tweaks", "", "tweaks as a JSON object")
	runCmd.Flags().StringVar(&inputsJSON, "inputs", "", "inputs as a JSON object")
	runCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "invalidate the cached result first")
	runCmd.Flags().BoolVar(&async, "async", false, "return immediately with a task id")

	rootCmd.AddCommand(runCmd, statusCmd, componentsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runFlow(cmd *cobra.Command, args []string) {
	flowID := args[0]

	body := map[string]any{
		"clear_cache": clearCache,
	}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	if async {
		body["sync"] = false
	}
	if tweaksJSON != "" {
		var tweaks map[string]any
		if err := json.Unmarshal([]byte(tweaksJSON), &tweaks); err != nil {
			logger.Error("invalid --tweaks JSON", "error", err)
			os.Exit(1)
		}
		body["tweaks"] = tweaks
	}
	if inputsJSON != "" {
		var inputs map[string]any
		if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
			logger.Error("invalid --inputs JSON", "error", err)
			os.Exit(1)
		}
		body["inputs"] = inputs
	}

	var resp datatypes.ProcessResponse
	if err := postJSON("/v1/process/"+flowID, body, &resp); err != nil {
		logger.Error("flow run failed", "flow_id", flowID, "error", err)
		os.Exit(1)
	}

	if async {
		fmt.Printf("task id: %s\n", resp.ID)
		fmt.Printf("session: %s\n", resp.SessionID)
		return
	}
	printJSON(resp.Result)
	fmt.Fprintf(os.Stderr, "session: %s\n", resp.SessionID)
}

func runStatus(cmd *cobra.Command, args []string) {
	var resp datatypes.TaskStatusResponse
	if err := getJSON("/v1/task/"+args[0]+"/status", &resp); err != nil {
		logger.Error("status query failed", "task_id", args[0], "error", err)
		os.Exit(1)
	}

	fmt.Printf("status: %s\n", resp.Status)
	if resp.Result != nil {
		printJSON(resp.Result)
	}
}

func runComponents(cmd *cobra.Command, args []string) {
	var catalog map[string]any
	if err := getJSON("/v1/all", &catalog); err != nil {
		logger.Error("catalog query failed", "error", err)
		os.Exit(1)
	}

	for category, value := range catalog {
		names, ok := value.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("%s (%d)\n", category, len(names))
		for name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
}

func runVersion(cmd *cobra.Command, args []string) {
	var resp map[string]string
	if err := getJSON("/version", &resp); err != nil {
		logger.Error("version query failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("server version: %s\n", resp["version"])
}

var httpClient = &http.Client{Timeout: 10 * time.Minute}

func postJSON(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, out)
}

func getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, serverURL+path, nil)
	if err != nil {
		return err
	}
	return do(req, out)
}

func do(req *http.Request, out any) error {
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(data))
	}
	return json.Unmarshal(data, out)
}

func printJSON(value any) {
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Println(value)
		return
	}
	fmt.Println(string(pretty))
}
