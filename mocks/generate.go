package mocks

//go:generate mockgen -destination=./mock_pricing_source.go -package=mocks -mock_names=Source=MockPricingSource github.com/quantfold/hedgesim/internal/pricing Source
//go:generate mockgen -destination=./mock_agent_source.go -package=mocks -mock_names=Source=MockAgentSource github.com/quantfold/hedgesim/internal/agent Source
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/quantfold/hedgesim/pkg/marketdata Provider
