package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/internhub/core"
)

// NewZap returns the console logger named name: human readable in debug, JSON otherwise.
func NewZap(name string, conf *core.Config) (*zap.SugaredLogger, error) {
	var zc zap.Config
	if conf.Debug || conf.TestMode {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.InitialFields = map[string]interface{}{"app": conf.AppName, "build": conf.Build, "env": conf.Env}
	}
	if conf.TestMode {
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zc.DisableStacktrace = true // rollbar reports them

	zl, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return zl.Named(name).Sugar(), nil
}
