package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var followRequestsCmd = &cobra.Command{
	Use:   "follow-requests",
	Short: "Manage follow requests for your account",
	Long:  "Commands for managing pending follow requests if your account requires approval",
}

var listFollowRequestsCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending follow requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listFollowRequests()
	},
}

var acceptFollowRequestCmd = &cobra.Command{
	Use:   "accept <request-id>",
	Short: "Accept a follow request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveFollowRequest(args[0], "accept")
	},
}

var rejectFollowRequestCmd = &cobra.Command{
	Use:   "reject <request-id>",
	Short: "Reject a follow request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveFollowRequest(args[0], "reject")
	},
}

func init() {
	followRequestsCmd.AddCommand(listFollowRequestsCmd)
	followRequestsCmd.AddCommand(acceptFollowRequestCmd)
	followRequestsCmd.AddCommand(rejectFollowRequestCmd)
}

type requester struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type followRequest struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	Requester   requester `json:"requester"`
	CreatedAt   time.Time `json:"created_at"`
}

type followRequestsResponse struct {
	Requests []followRequest `json:"requests"`
	Count    int             `json:"count"`
}

func listFollowRequests() error {
	if err := requireToken(); err != nil {
		return err
	}

	body, err := apiGet("/api/v1/users/me/follow-requests?limit=50")
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var resp followRequestsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Count == 0 {
		fmt.Println("No pending follow requests")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REQUEST ID\tUSERNAME\tNAME\tREQUESTED")
	for _, r := range resp.Requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID, r.Requester.Username, r.Requester.DisplayName,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func resolveFollowRequest(requestID, action string) error {
	if err := requireToken(); err != nil {
		return err
	}

	body, err := apiPost(fmt.Sprintf("/api/v1/follow-requests/%s/%s", requestID, action))
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}
	fmt.Printf("Request %s %sed\n", requestID, action)
	return nil
}

func apiGet(path string) ([]byte, error) {
	return apiDo(http.MethodGet, path)
}

func apiPost(path string) ([]byte, error) {
	return apiDo(http.MethodPost, path)
}

func apiDo(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		_ = json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return body, nil
}
