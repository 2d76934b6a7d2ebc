/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package script runs scriptTask bodies in a sandboxed JavaScript VM. It is
// the embedded-engine substitute for an exec-based script sandbox: Go has no
// safe in-process interpreter for an arbitrary host language, so scripts are
// authored in JavaScript and run through goja instead of being shelled out.
package script

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
)

// Result is the outcome of running a script body: the script's `result`
// binding (if any) plus every variable it set via set_variable, which the
// caller merges back into the token's scope.
type Result struct {
	Value     interface{}
	Variables map[string]interface{}
	Logs      []string
}

// Executor runs BPMN scriptTask bodies. A fresh goja.Runtime is created per
// call so scripts never share state or interfere with one another.
type Executor struct {
	logger  logger.ComponentLogger
	timeout time.Duration
}

// NewExecutor creates a script executor with the given per-script timeout.
// A non-positive timeout disables the deadline.
func NewExecutor(log logger.ComponentLogger, timeout time.Duration) *Executor {
	return &Executor{logger: log, timeout: timeout}
}

// Execute runs script against variables, exposing get_variable/set_variable
// host functions and a console.log sink, and returns the script's `result`
// binding plus every variable set during the run.
func (e *Executor) Execute(ctx context.Context, script string, variables map[string]interface{}) (*Result, error) {
	vm := goja.New()
	updated := make(map[string]interface{})
	logs := make([]string, 0)

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			logs = append(logs, arg.String())
		}
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	for name, value := range variables {
		if err := vm.Set(name, value); err != nil {
			return nil, models.NewEngineError(models.ErrExprSyntax, "", "",
				"failed to bind variable "+name+" into script scope", err)
		}
	}

	_ = vm.Set("get_variable", func(name string) interface{} {
		if v, ok := updated[name]; ok {
			return v
		}
		return variables[name]
	})
	_ = vm.Set("set_variable", func(name string, value interface{}) {
		updated[name] = value
	})

	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			vm.Interrupt("script execution timed out")
		})
		defer timer.Stop()
	}
	go func() {
		<-ctx.Done()
		if ctx.Err() != nil {
			vm.Interrupt(ctx.Err())
		}
	}()

	if _, err := vm.RunString(script); err != nil {
		e.logger.Warn("script execution failed", logger.String("error", err.Error()))
		return nil, models.NewEngineError(models.ErrServiceTaskFailed, "", "",
			"script execution failed", err)
	}

	var value interface{}
	if resultVal := vm.Get("result"); resultVal != nil && !goja.IsUndefined(resultVal) && !goja.IsNull(resultVal) {
		value = resultVal.Export()
	}

	e.logger.Debug("script execution completed",
		logger.Int("variables_set", len(updated)),
		logger.Any("result", value))

	return &Result{Value: value, Variables: updated, Logs: logs}, nil
}

// ExecuteString is a convenience wrapper returning the result formatted as a
// string, used by callers that only need a scalar outcome.
func (e *Executor) ExecuteString(ctx context.Context, script string, variables map[string]interface{}) (string, map[string]interface{}, error) {
	result, err := e.Execute(ctx, script, variables)
	if err != nil {
		return "", nil, err
	}
	if result.Value == nil {
		return "", result.Variables, nil
	}
	return fmt.Sprintf("%v", result.Value), result.Variables, nil
}
