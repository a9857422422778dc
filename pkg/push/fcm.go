package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	messagingScope  = "https://www.googleapis.com/auth/firebase.messaging"
	defaultEndpoint = "https://fcm.googleapis.com"
)

// FCMClient sends messages through the Firebase Cloud Messaging HTTP v1 API.
type FCMClient struct {
	httpClient *http.Client
	projectID  string
	endpoint   string
}

// NewFCMClient loads a service-account JSON file and returns a client whose
// HTTP transport attaches OAuth2 access tokens.
func NewFCMClient(ctx context.Context, credentialsFile string) (*FCMClient, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse fcm credentials: %w", err)
	}
	if creds.ProjectID == "" {
		return nil, fmt.Errorf("fcm credentials have no project_id")
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 10 * time.Second
	return NewFCMClientWithHTTP(client, creds.ProjectID, defaultEndpoint), nil
}

func NewFCMClientWithHTTP(client *http.Client, projectID, endpoint string) *FCMClient {
	return &FCMClient{httpClient: client, projectID: projectID, endpoint: endpoint}
}

type message struct {
	Token        string            `json:"token"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      map[string]string `json:"android"`
	APNS         apnsConfig        `json:"apns"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apnsConfig struct {
	Payload struct {
		APS struct {
			Sound string `json:"sound"`
		} `json:"aps"`
	} `json:"payload"`
}

func (c *FCMClient) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := message{
		Token:        token,
		Notification: notification{Title: title, Body: body},
		Data:         data,
		Android:      map[string]string{"priority": "high"},
	}
	msg.APNS.Payload.APS.Sound = "default"

	payload, err := json.Marshal(map[string]any{"message": msg})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.endpoint, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("fcm send: status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return nil
}

// Noop drops every message; used when FCM is not configured.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string, map[string]string) error {
	return nil
}
