package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agencyops-backend/shared/config"
)

// AuthzClient handles communication with the authorization service.
type AuthzClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthzClient creates a new authorization service client.
func NewAuthzClient(baseURL string) *AuthzClient {
	return &AuthzClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// AccessCheckRequest asks whether a user may perform an action on a
// resource kind.
type AccessCheckRequest struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// AccessCheckResponse is the authorization service's answer.
type AccessCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// BatchAccessCheckRequest checks several resource-action pairs at once.
type BatchAccessCheckRequest struct {
	UserID string                `json:"user_id"`
	Checks []ResourceActionCheck `json:"checks"`
}

type ResourceActionCheck struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// BatchAccessCheckResponse maps "resource:action" to the allow outcome.
type BatchAccessCheckResponse struct {
	Results map[string]bool `json:"results"`
}

// CheckAccess checks a single resource-action pair for a user.
func (ac *AuthzClient) CheckAccess(userID, resource, action string) (bool, string, error) {
	req := AccessCheckRequest{
		UserID:   userID,
		Resource: resource,
		Action:   action,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return false, "", fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := ac.httpClient.Post(
		fmt.Sprintf("%s/api/authz/check", ac.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return false, "", fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("authorization service returned status: %d", resp.StatusCode)
	}

	var result AccessCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, "", fmt.Errorf("failed to decode response: %v", err)
	}

	return result.Allowed, result.Reason, nil
}

// BatchCheckAccess checks multiple resource-action pairs at once.
func (ac *AuthzClient) BatchCheckAccess(userID string, checks []ResourceActionCheck) (map[string]bool, error) {
	request := BatchAccessCheckRequest{
		UserID: userID,
		Checks: checks,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := ac.httpClient.Post(
		fmt.Sprintf("%s/api/authz/batch-check", ac.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authorization service returned status: %d", resp.StatusCode)
	}

	var result BatchAccessCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	return result.Results, nil
}

// Global authorization client instance
var defaultAuthzClient *AuthzClient

// InitAuthzClient initializes the global authorization client.
func InitAuthzClient() {
	cfg := config.GetConfig()
	defaultAuthzClient = NewAuthzClient(cfg.AuthorizationServiceURL)
}

// CheckAccess is a convenience function using the global client.
func CheckAccess(userID, resource, action string) (bool, string, error) {
	if defaultAuthzClient == nil {
		InitAuthzClient()
	}
	return defaultAuthzClient.CheckAccess(userID, resource, action)
}

// BatchCheckAccess is a convenience function using the global client.
func BatchCheckAccess(userID string, checks []ResourceActionCheck) (map[string]bool, error) {
	if defaultAuthzClient == nil {
		InitAuthzClient()
	}
	return defaultAuthzClient.BatchCheckAccess(userID, checks)
}
