package logger

import "go.uber.org/zap"

var global *zap.Logger

func Init() error {
	built, err := zap.NewProduction()
	if err != nil {
		return err
	}
	global = built
	return nil
}

func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}
