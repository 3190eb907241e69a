package main

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/temirov/txdir/internal/cli"
	"github.com/temirov/txdir/internal/utils"
)

// main is the entry point for the txdir command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(zapcore.ErrorLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
