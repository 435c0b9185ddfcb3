package metrics

import (
	"fmt"

	"github.com/ethereum/go-ethereum/metrics"
)

// Note, must use metrics.DefaultRegistry from geth, since go-rpc-provider depends on it
// for rpc metrics by default.
var EvmRegistry = metrics.DefaultRegistry

func GetOrRegisterCounter(nameFormat string, nameArgs ...any) metrics.Counter {
	name := fmt.Sprintf(nameFormat, nameArgs...)
	return metrics.GetOrRegisterCounter(name, EvmRegistry)
}

func GetOrRegisterGauge(nameFormat string, nameArgs ...any) metrics.Gauge {
	name := fmt.Sprintf(nameFormat, nameArgs...)
	return metrics.GetOrRegisterGauge(name, EvmRegistry)
}

func NewHistogram() metrics.Histogram {
	return metrics.NewHistogram(metrics.NewExpDecaySample(1024, 0.015))
}

func GetOrRegisterHistogram(nameFormat string, nameArgs ...any) metrics.Histogram {
	name := fmt.Sprintf(nameFormat, nameArgs...)
	return EvmRegistry.GetOrRegister(name, NewHistogram).(metrics.Histogram)
}

func GetOrRegisterTimer(nameFormat string, nameArgs ...any) metrics.Timer {
	name := fmt.Sprintf(nameFormat, nameArgs...)
	return metrics.GetOrRegisterTimer(name, EvmRegistry)
}
