package classifier

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is an offline stand-in for the model service. The rules
// below are a crude caricature of the real model, just enough for every
// label to be reachable in local demos.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Classify(ctx context.Context, req *entity.ClassifyRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] classifying record")

	label := entity.DisorderLabelHealthy
	switch {
	case req.BMICategory == "Obese" || req.BMICategory == "Overweight":
		label = entity.DisorderLabelSleepApnea
	case req.SleepDuration < 6.0 || req.StressLevel >= 4:
		label = entity.DisorderLabelInsomnia
	}

	ctxzap.Info(ctx, "[MOCK] record classified", zap.String("label", label))
	return label, nil
}
