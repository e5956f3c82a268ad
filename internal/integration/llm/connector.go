package llm

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

type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// ExtractTurn sends the dialogue plus the newest user message to the LLM
// service and returns the structured extraction for this turn.
func (c *Connector) ExtractTurn(ctx context.Context, req *entity.ExtractTurnRequest) (
	*entity.ExtractTurnResponse, error,
) {
	ctxzap.Info(ctx, "extracting record fields via LLM service", zap.Int("history_len", len(req.History)))

	var resp entity.ExtractTurnResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ExtractTurnEndpoint, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("extract turn failed: %w", err)
	}

	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("extract turn response: %w", err)
	}

	ctxzap.Info(ctx, "extraction completed",
		zap.Float64("confidence", resp.ConfidenceScore),
		zap.Int("missing_fields", len(resp.MissingFields)),
		zap.Bool("is_ready", resp.IsReady),
	)

	return &resp, nil
}

// GenerateReport generates the free-text sleep-health report from the
// finalized record and the classifier's label.
func (c *Connector) GenerateReport(ctx context.Context, req *entity.GenerateReportRequest) (string, error) {
	ctxzap.Info(ctx, "generating report via LLM service", zap.String("disorder_label", req.DisorderLabel))

	var resp entity.GenerateReportResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateReportEndpoint, req, &resp)
	if err != nil {
		return "", fmt.Errorf("generate report failed: %w", err)
	}

	if resp.Result == "" {
		return "", fmt.Errorf("invalid report response: empty or missing result field")
	}

	ctxzap.Info(ctx, "report generated successfully", zap.Int("result_length", len(resp.Result)))

	return resp.Result, nil
}
