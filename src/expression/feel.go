/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package expression

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PaesslerAG/gval"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
)

// pathPattern matches dotted/indexed variable paths such as response.body
// or items[0].name, so they can be pulled out and resolved through
// PathNavigator before the rest of the expression reaches gval.
var pathPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*|\[[^\]]+\])+`)

// bareIdentPattern matches a standalone identifier, used to seed gval's
// parameter map with an explicit nil for any variable the expression
// references but that isn't present, instead of letting gval raise an
// "unknown parameter" error for it.
var bareIdentPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var feelReservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "true": true, "false": true, "null": true,
}

var feelKeywordReplacer = strings.NewReplacer(
	" and ", " && ",
	" or ", " || ",
	" not ", " !",
)

// FeelEvaluator evaluates the operator/logic portion of a FEEL-ish
// expression using gval, while keeping PathNavigator's null-safe dotted
// path resolution for variable access: a missing path or variable
// evaluates to null rather than raising a syntax/evaluation error.
type FeelEvaluator struct {
	logger logger.ComponentLogger
	nav    *PathNavigator
}

// NewFeelEvaluator creates a new FEEL expression evaluator.
func NewFeelEvaluator(log logger.ComponentLogger) *FeelEvaluator {
	return &FeelEvaluator{logger: log, nav: NewPathNavigator(log)}
}

// looksLikeOperatorExpression reports whether expr contains a comparison,
// arithmetic or logical operator and should be routed through gval rather
// than treated as a bare variable/path reference.
func (fe *FeelEvaluator) looksLikeOperatorExpression(expr string) bool {
	operators := []string{"==", "!=", ">=", "<=", ">", "<", " and ", " or ", "not ", "(", "+", "-", "*", "/"}
	for _, op := range operators {
		if strings.Contains(expr, op) {
			return true
		}
	}
	return false
}

// Evaluate resolves every dotted/indexed path in expr through
// PathNavigator, substitutes a flat alias for each, rewrites the FEEL
// and/or/not keywords to gval's && / || / !, and evaluates the result
// with gval's full expression language.
func (fe *FeelEvaluator) Evaluate(expr string, variables map[string]interface{}) (interface{}, error) {
	params := map[string]interface{}{}
	for k, v := range variables {
		params[k] = v
	}

	rewritten := expr
	for i, path := range pathPattern.FindAllString(expr, -1) {
		value, err := fe.nav.NavigatePath(path, variables)
		if err != nil {
			return nil, models.NewEngineError(models.ErrExprEval, "", "", "failed to resolve path "+path, err)
		}
		alias := fmt.Sprintf("__path%d", i)
		params[alias] = value
		rewritten = strings.Replace(rewritten, path, alias, 1)
	}

	for _, ident := range bareIdentPattern.FindAllString(rewritten, -1) {
		if feelReservedWords[ident] || strings.HasPrefix(ident, "__path") {
			continue
		}
		if _, exists := params[ident]; !exists {
			params[ident] = nil
		}
	}

	rewritten = feelKeywordReplacer.Replace(" " + rewritten + " ")
	rewritten = strings.TrimSpace(rewritten)

	result, err := gval.Full().Evaluate(rewritten, params)
	if err != nil {
		return nil, models.NewEngineError(models.ErrExprSyntax, "", "", "failed to evaluate expression: "+expr, err)
	}
	return result, nil
}

// EvaluateBool evaluates expr and coerces the result to a boolean: a null
// result (a missing variable somewhere in the expression) is falsy, never
// an error, matching FEEL's null-propagation rule for gateway conditions.
func (fe *FeelEvaluator) EvaluateBool(expr string, variables map[string]interface{}) (bool, error) {
	result, err := fe.Evaluate(expr, variables)
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	if b, ok := result.(bool); ok {
		return b, nil
	}
	return strings.EqualFold(fmt.Sprintf("%v", result), "true"), nil
}
