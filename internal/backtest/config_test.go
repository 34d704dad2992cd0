package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantfold/hedgesim/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

const validConfigYAML = `
initial_capital: 100000
symbols:
  - AAPL
  - MSFT
start_time: 2024-01-02T00:00:00Z
end_time: 2024-06-28T00:00:00Z
calendar: weekdays
risk:
  max_position_pct_of_equity: 0.5
  max_daily_turnover_pct: 0.25
decision:
  threshold_buy: 0.3
  threshold_sell: 0.25
`

func (suite *ConfigTestSuite) TestParseValidConfig() {
	config, err := ParseConfig(validConfigYAML)
	suite.Require().NoError(err)

	suite.Equal(100000.0, config.InitialCapital)
	suite.Equal([]string{"AAPL", "MSFT"}, config.Symbols)
	suite.Equal(CalendarWeekdays, config.Calendar)
	suite.Equal(0.5, config.Risk.MaxPositionPct)
	suite.Equal(0.25, config.Risk.MaxTurnoverPct)
	suite.Equal(0.3, config.Decision.ThresholdBuy)
	suite.Equal(0.25, config.Decision.ThresholdSell)

	suite.Require().True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
}

func (suite *ConfigTestSuite) TestDefaultsFillOmittedSections() {
	config, err := ParseConfig(`
initial_capital: 5000
symbols: [SPY]
calendar: data
`)
	suite.Require().NoError(err)

	suite.Equal(0.2, config.Risk.MaxPositionPct)
	suite.Equal(0.1, config.Risk.MaxTurnoverPct)
	suite.Equal(0.2, config.Decision.ThresholdBuy)
	suite.Equal(0.2, config.Decision.ThresholdSell)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestRejectsNonPositiveCapital() {
	_, err := ParseConfig(`
initial_capital: 0
symbols: [SPY]
calendar: data
`)
	suite.Require().Error(err)
	suite.True(errors.IsFatal(err))
}

func (suite *ConfigTestSuite) TestRejectsEmptySymbols() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: []
calendar: data
`)
	suite.Require().Error(err)
	suite.True(errors.IsFatal(err))
}

func (suite *ConfigTestSuite) TestRejectsRiskFractionOutOfRange() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: [SPY]
calendar: data
risk:
  max_position_pct_of_equity: 1.5
  max_daily_turnover_pct: 0.1
`)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPercentage))
}

func (suite *ConfigTestSuite) TestRejectsNegativeThreshold() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: [SPY]
calendar: data
decision:
  threshold_buy: -0.1
  threshold_sell: 0.2
`)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
}

func (suite *ConfigTestSuite) TestRejectsUnknownCalendar() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: [SPY]
calendar: lunar
`)
	suite.Require().Error(err)
	suite.True(errors.IsFatal(err))
}

func (suite *ConfigTestSuite) TestWeekdaysCalendarRequiresBounds() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: [SPY]
calendar: weekdays
`)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCalendar))
}

func (suite *ConfigTestSuite) TestRejectsInvertedTimeRange() {
	_, err := ParseConfig(`
initial_capital: 1000
symbols: [SPY]
calendar: data
start_time: 2024-06-28T00:00:00Z
end_time: 2024-01-02T00:00:00Z
`)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestRejectsMalformedYAML() {
	_, err := ParseConfig(`initial_capital: [not a number`)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(validConfigYAML), 0644))

	config, err := LoadConfig(path)
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, config.Symbols)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	_, err := LoadConfig(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
