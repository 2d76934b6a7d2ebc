/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"context"
	"time"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/script"
)

// scriptTimeout bounds a single scriptTask body; a runaway script is
// interrupted rather than blocking the token forever.
const scriptTimeout = 5 * time.Second

// ScriptTaskExecutor executes script tasks
// Исполнитель скриптовых задач
type ScriptTaskExecutor struct {
	engine *script.Executor
}

// NewScriptTaskExecutor creates a script task executor backed by a goja VM.
func NewScriptTaskExecutor() *ScriptTaskExecutor {
	return &ScriptTaskExecutor{
		engine: script.NewExecutor(logger.NewComponentLogger("script-task"), scriptTimeout),
	}
}

// Execute runs the task's inline script body against the token's variable
// scope, merges any set_variable calls back into token.Variables, and advances
// along the element's outgoing flows.
func (ste *ScriptTaskExecutor) Execute(token *models.Token, element map[string]interface{}) (*ExecutionResult, error) {
	if ste.engine == nil {
		ste.engine = script.NewExecutor(logger.NewComponentLogger("script-task"), scriptTimeout)
	}

	scriptFormat, scriptCode, resultVar := ste.extractScriptInfo(element, token)

	logger.Info("Executing script task",
		logger.String("token_id", token.TokenID),
		logger.String("element_id", ste.getElementID(element)),
		logger.String("script_format", scriptFormat),
		logger.Int("script_size", len(scriptCode)))

	if scriptCode == "" {
		return executeBasicFlowElement(token, element, "script task")
	}

	result, err := ste.engine.Execute(context.Background(), scriptCode, token.Variables)
	if err != nil {
		logger.Error("script task execution failed",
			logger.String("token_id", token.TokenID),
			logger.String("error", err.Error()))
		return nil, err
	}

	if token.Variables == nil {
		token.Variables = make(map[string]interface{})
	}
	for name, value := range result.Variables {
		token.Variables[name] = value
	}
	if resultVar != "" && result.Value != nil {
		token.Variables[resultVar] = result.Value
	}

	return executeBasicFlowElement(token, element, "script task")
}

// extractScriptInfo extracts script information from element definition
// Извлекает информацию о скрипте из определения элемента
func (ste *ScriptTaskExecutor) extractScriptInfo(
	element map[string]interface{},
	token *models.Token,
) (format, code, result string) {
	// Check for script format (JavaScript, Python, etc.)
	if scriptFormat, exists := element["script_format"]; exists {
		if formatStr, ok := scriptFormat.(string); ok {
			format = formatStr
		}
	}
	if format == "" {
		format = "javascript" // Default format
	}

	// Extract script code
	if scriptCode, exists := element["script"]; exists {
		if codeStr, ok := scriptCode.(string); ok {
			code = codeStr
		}
	}

	// Check for result variable
	if resultVar, exists := element["result_variable"]; exists {
		if resultStr, ok := resultVar.(string); ok {
			result = resultStr
		}
	}

	if code != "" {
		logger.Debug("Script task code extracted",
			logger.String("token_id", token.TokenID),
			logger.String("format", format),
			logger.String("result_var", result),
			logger.Int("code_length", len(code)))
	}

	return format, code, result
}

// getElementID extracts element ID from element definition
// Извлекает ID элемента из определения элемента
func (ste *ScriptTaskExecutor) getElementID(element map[string]interface{}) string {
	if id, exists := element["id"]; exists {
		if idStr, ok := id.(string); ok {
			return idStr
		}
	}
	return "unknown"
}

// GetElementType returns element type
// Возвращает тип элемента
func (ste *ScriptTaskExecutor) GetElementType() string {
	return "scriptTask"
}
