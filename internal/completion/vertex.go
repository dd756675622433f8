package completion

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexClient implements Client using a Google Cloud Vertex AI text model.
type VertexClient struct {
	client   *aiplatform.PredictionClient
	endpoint string
}

// VertexConfig holds the Vertex AI settings for the completion backend.
type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// NewVertexClient creates a new Vertex AI completion client.
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for Vertex AI completions")
	}

	clientEndpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", cfg.Location)
	client, err := aiplatform.NewPredictionClient(ctx, option.WithEndpoint(clientEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		cfg.ProjectID, cfg.Location, cfg.Model)

	return &VertexClient{client: client, endpoint: endpoint}, nil
}

// Close closes the Vertex AI client.
func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete sends one prediction request and returns the generated text.
func (c *VertexClient) Complete(ctx context.Context, system, user string) (string, error) {
	instance, err := structpb.NewStruct(map[string]interface{}{
		"prompt": system + "\n\n" + user,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create instance: %w", err)
	}
	parameters, err := structpb.NewStruct(map[string]interface{}{
		"temperature":     0.2,
		"maxOutputTokens": 1024,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create parameters: %w", err)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:   c.endpoint,
		Instances:  []*structpb.Value{structpb.NewStructValue(instance)},
		Parameters: structpb.NewStructValue(parameters),
	}

	resp, err := c.client.Predict(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vertex AI prediction failed: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return "", fmt.Errorf("no predictions returned")
	}

	predStruct := resp.Predictions[0].GetStructValue()
	if predStruct == nil {
		return "", fmt.Errorf("unexpected prediction format")
	}
	contentField := predStruct.Fields["content"]
	if contentField == nil {
		return "", fmt.Errorf("no content field in prediction")
	}
	return contentField.GetStringValue(), nil
}
