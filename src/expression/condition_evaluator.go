/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package expression

import (
	"strings"

	"github.com/atombpmn/flowrt/src/core/logger"
)

// ConditionEvaluator condition processor
// Обработчик условий
type ConditionEvaluator struct {
	logger            logger.ComponentLogger
	variableEvaluator *VariableEvaluator
	feelEvaluator     *FeelEvaluator
}

// NewConditionEvaluator creates new condition processor
// Создает новый обработчик условий
func NewConditionEvaluator(logger logger.ComponentLogger) *ConditionEvaluator {
	return &ConditionEvaluator{
		logger:            logger,
		variableEvaluator: NewVariableEvaluator(logger),
		feelEvaluator:     NewFeelEvaluator(logger),
	}
}

// NewConditionEvaluatorWithVariableEvaluator creates new condition processor with shared VariableEvaluator
// Создает новый обработчик условий с общим VariableEvaluator
func NewConditionEvaluatorWithVariableEvaluator(
	logger logger.ComponentLogger,
	variableEvaluator *VariableEvaluator,
) *ConditionEvaluator {
	return &ConditionEvaluator{
		logger:            logger,
		variableEvaluator: variableEvaluator,
		feelEvaluator:     NewFeelEvaluator(logger),
	}
}

// EvaluateCondition evaluates a gateway sequence flow condition. Both the
// FEEL '=' prefix form and the bare "${status} == 'approved'" form are
// routed through gval after ${...}/#{...} substitution; a condition whose
// variables are missing evaluates to false rather than erroring, per
// FEEL's null-propagation rule.
func (ce *ConditionEvaluator) EvaluateCondition(variables map[string]interface{}, condition string) (bool, error) {
	expr := strings.TrimPrefix(condition, "=")
	expr = ce.substituteTemplates(expr, variables)
	return ce.feelEvaluator.EvaluateBool(expr, variables)
}

// EvaluateFeelExpression evaluates a bare FEEL expression (no leading '=')
// as a boolean condition.
func (ce *ConditionEvaluator) EvaluateFeelExpression(
	expression string,
	variables map[string]interface{},
) (bool, error) {
	ce.logger.Debug("Evaluating FEEL expression",
		logger.String("expression", expression))
	result, err := ce.feelEvaluator.EvaluateBool(expression, variables)
	if err != nil {
		ce.logger.Warn("Failed to evaluate FEEL expression",
			logger.String("expression", expression),
			logger.String("error", err.Error()))
	}
	return result, err
}

// substituteTemplates replaces ${var}/#{var} placeholders with the raw
// variable reference so the rest of the expression reaches gval as plain
// FEEL syntax, e.g. "${status} == 'approved'" -> "status == 'approved'".
func (ce *ConditionEvaluator) substituteTemplates(expr string, variables map[string]interface{}) string {
	expr = strings.ReplaceAll(expr, "${", "")
	expr = strings.ReplaceAll(expr, "#{", "")
	expr = strings.ReplaceAll(expr, "}", "")
	return expr
}
