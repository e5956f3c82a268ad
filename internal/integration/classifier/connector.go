package classifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/config"
	"github.com/somnihealth/intake-backend/internal/entity"
	"github.com/somnihealth/intake-backend/internal/integration/common"
	pkghttp "github.com/somnihealth/intake-backend/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to the model-serving service that hosts the pre-trained
// sleep-disorder classifier. The model itself is opaque to this code.
type Connector struct {
	config    config.ClassifierConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ClassifierConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Classify submits a fully-populated feature row and returns the predicted
// disorder label. Single attempt; a failure surfaces once per call.
func (c *Connector) Classify(ctx context.Context, req *entity.ClassifyRequest) (string, error) {
	ctxzap.Info(ctx, "classifying record via model service")

	var resp entity.ClassifyResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ClassifyEndpoint, req, &resp)
	if err != nil {
		return "", fmt.Errorf("classify failed: %w", err)
	}

	if resp.Label == "" {
		return "", fmt.Errorf("invalid classify response: empty label")
	}

	ctxzap.Info(ctx, "record classified", zap.String("label", resp.Label))

	return resp.Label, nil
}
