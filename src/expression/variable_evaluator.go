/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package expression

import (
	"fmt"
	"strings"

	"github.com/atombpmn/flowrt/src/core/logger"
)

// VariableEvaluator variable processor
// Обработчик переменных
type VariableEvaluator struct {
	logger        logger.ComponentLogger
	pathNavigator *PathNavigator
	feelEvaluator *FeelEvaluator
}

// NewVariableEvaluator creates new variable processor
// Создает новый обработчик переменных
func NewVariableEvaluator(logger logger.ComponentLogger) *VariableEvaluator {
	return &VariableEvaluator{
		logger:        logger,
		pathNavigator: NewPathNavigator(logger),
		feelEvaluator: NewFeelEvaluator(logger),
	}
}

// EvaluateVariable evaluates variable from expression
// Вычисляет переменную из выражения
func (ve *VariableEvaluator) EvaluateVariable(
	expression string,
	variables map[string]interface{},
) (interface{}, error) {
	// Handle variables in format ${variableName}
	// Обрабатываем переменные в формате ${variableName}
	if strings.HasPrefix(expression, "${") && strings.HasSuffix(expression, "}") {
		varName := strings.TrimSuffix(strings.TrimPrefix(expression, "${"), "}")
		if value, exists := variables[varName]; exists {
			ve.logger.Debug("Variable found",
				logger.String("variable", varName),
				logger.Any("value", value))
			return value, nil
		}
		ve.logger.Warn("Variable not found",
			logger.String("variable", varName))
		return expression, nil
	}

	// Handle variables in format #{expression} (Camunda style)
	// Обрабатываем переменные в формате #{expression} (стиль Camunda)
	if strings.HasPrefix(expression, "#{") && strings.HasSuffix(expression, "}") {
		varName := strings.TrimSuffix(strings.TrimPrefix(expression, "#{"), "}")
		if value, exists := variables[varName]; exists {
			ve.logger.Debug("Camunda variable found",
				logger.String("variable", varName),
				logger.Any("value", value))
			return value, nil
		}
		ve.logger.Warn("Camunda variable not found",
			logger.String("variable", varName))
		return expression, nil
	}

	// Handle FEEL expressions starting with "="
	// Обрабатываем FEEL выражения начинающиеся с "="
	if strings.HasPrefix(expression, "=") {
		feelExpr := expression[1:] // Remove "="

		// Logical and comparison expressions go through gval, which already
		// handles operator precedence, parentheses and arithmetic; only the
		// path resolution still goes through PathNavigator for FEEL's
		// missing-path-is-null semantics.
		if ve.feelEvaluator.looksLikeOperatorExpression(feelExpr) {
			result, err := ve.feelEvaluator.Evaluate(feelExpr, variables)
			if err != nil {
				ve.logger.Warn("FEEL expression evaluation failed",
					logger.String("expression", feelExpr),
					logger.String("error", err.Error()))
				return false, err
			}
			ve.logger.Debug("FEEL expression evaluation successful",
				logger.String("expression", feelExpr),
				logger.Any("result", result))
			return result, nil
		}

		// Check if it's a path expression vs string with variables
		// Различаем path выражения и строки с переменными
		// Path expression: response.body.data (no /)
		// String with variables: api_url/nodes/params.newid (has /)
		if (strings.Contains(feelExpr, ".") || strings.Contains(feelExpr, "[")) && !strings.Contains(feelExpr, "/") {
			// Use PathNavigator for complex paths (no slashes)
			// Используем PathNavigator для сложных путей (без слешей)
			result, err := ve.pathNavigator.NavigatePath(feelExpr, variables)
			if err != nil {
				ve.logger.Warn("Path navigation failed",
					logger.String("path", feelExpr),
					logger.String("error", err.Error()))
				// Fallback to existing logic
				// Откатываемся к существующей логике
			} else {
				ve.logger.Debug("Path navigation successful",
					logger.String("path", feelExpr),
					logger.Any("result", result),
					logger.String("result_type", fmt.Sprintf("%T", result)))
				return result, nil
			}
		}
		
		// Handle simple variable access in FEEL
		// Обрабатываем простой доступ к переменным в FEEL
		if value, exists := variables[feelExpr]; exists {
			ve.logger.Debug("FEEL variable found",
				logger.String("variable", feelExpr),
				logger.Any("value", value))
			return value, nil
		}
		// Try to replace variables in string expression
		// Пытаемся заменить переменные в строковом выражении
		replaced := ve.replaceVariablesInString(feelExpr, variables)
		if replaced != feelExpr {
			ve.logger.Debug("FEEL expression with variables replaced",
				logger.String("original", feelExpr),
				logger.String("replaced", replaced))
			return replaced, nil
		}
		ve.logger.Debug("FEEL expression as literal",
			logger.String("expression", feelExpr))
		return feelExpr, nil
	}

	// Handle simple variable name without brackets
	// Обрабатываем простое имя переменной без скобок
	if ve.isSimpleVariableName(expression) {
		if value, exists := variables[expression]; exists {
			ve.logger.Debug("Simple variable found",
				logger.String("variable", expression),
				logger.Any("value", value))
			return value, nil
		}
		ve.logger.Debug("Simple variable not found, returning as literal",
			logger.String("expression", expression))
	}

	ve.logger.Debug("Expression returned as literal",
		logger.String("expression", expression))
	return expression, nil
}

// isSimpleVariableName checks if string is a simple variable name
// Проверяет является ли строка простым именем переменной
func (ve *VariableEvaluator) isSimpleVariableName(str string) bool {
	// Simple validation: variable name should contain only letters, numbers, underscores
	// and start with letter or underscore
	// Простая валидация: имя переменной должно содержать только буквы, цифры, подчеркивания
	// и начинаться с буквы или подчеркивания
	if len(str) == 0 {
		return false
	}

	// Must start with letter or underscore
	// Должно начинаться с буквы или подчеркивания
	first := str[0]
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') || first == '_') {
		return false
	}

	// Rest can be letters, numbers, underscores
	// Остальное может быть буквами, цифрами, подчеркиваниями
	for i := 1; i < len(str); i++ {
		char := str[i]
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_') {
			return false
		}
	}

	return true
}

// isWordChar checks if character is a word character (letter, digit, underscore)
// Проверяет является ли символ словесным (буква, цифра, подчеркивание)
func (ve *VariableEvaluator) isWordChar(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == '_'
}

// replaceVariablesInString replaces variable names and paths in string with their values
// Заменяет имена переменных и пути в строке на их значения
func (ve *VariableEvaluator) replaceVariablesInString(
	str string,
	variables map[string]interface{},
) string {
	result := ""
	i := 0

	for i < len(str) {
		// Check if this is the start of a variable path
		// Проверяем является ли это началом пути переменной
		if ve.isVarStartChar(str[i]) {
			// Scan the full path (including dots for nested access)
			// Сканируем полный путь (включая точки для вложенного доступа)
			pathStart := i
			path := ve.scanVariablePath(str, i)
			pathEnd := pathStart + len(path)

			// Check word boundary before
			// Проверяем границу слова до
			beforeOK := pathStart == 0 || !ve.isWordChar(str[pathStart-1])

			// Check word boundary after (dot is OK for paths)
			// Проверяем границу слова после (точка допустима для путей)
			afterOK := pathEnd >= len(str) || !ve.isWordChar(str[pathEnd])

			if beforeOK && afterOK && path != "" {
				// Try to resolve the path
				// Пытаемся разрешить путь
				value, found := ve.resolveVariablePath(path, variables)
				if found {
					result += ve.formatValueForString(value)
					ve.logger.Debug("Variable path replaced in string",
						logger.String("path", path),
						logger.Any("value", value),
						logger.String("position", fmt.Sprintf("%d-%d", pathStart, pathEnd)))
					i = pathEnd
					continue
				}
			}
		}

		// No variable found at this position, keep the character
		// Переменная не найдена на этой позиции, сохраняем символ
		result += string(str[i])
		i++
	}

	return result
}

// formatValueForString renders a resolved value for insertion into a string;
// nil becomes an empty string
// Форматирует значение для вставки в строку
func (ve *VariableEvaluator) formatValueForString(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// isVarStartChar checks if character can start a variable name
// Проверяет может ли символ начинать имя переменной
func (ve *VariableEvaluator) isVarStartChar(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		char == '_'
}

// scanVariablePath scans a variable path from the given position
// Сканирует путь переменной с заданной позиции
func (ve *VariableEvaluator) scanVariablePath(str string, start int) string {
	i := start
	path := ""

	// Scan the first part (variable name)
	// Сканируем первую часть (имя переменной)
	for i < len(str) && ve.isWordChar(str[i]) {
		path += string(str[i])
		i++
	}

	// Continue scanning through dots and subsequent parts
	// Продолжаем сканирование через точки и последующие части
	for i < len(str) {
		if str[i] == '.' {
			// Check if there's a valid identifier after the dot
			// Проверяем есть ли валидный идентификатор после точки
			if i+1 < len(str) && ve.isVarStartChar(str[i+1]) {
				path += "."
				i++
				// Scan the next part
				// Сканируем следующую часть
				for i < len(str) && ve.isWordChar(str[i]) {
					path += string(str[i])
					i++
				}
			} else {
				break
			}
		} else {
			break
		}
	}

	return path
}

// resolveVariablePath resolves a variable path to its value
// Разрешает путь переменной в значение
func (ve *VariableEvaluator) resolveVariablePath(
	path string,
	variables map[string]interface{},
) (interface{}, bool) {
	// Check if it's a simple variable first
	// Сначала проверяем является ли это простой переменной
	if !strings.Contains(path, ".") {
		value, exists := variables[path]
		return value, exists
	}

	// Use PathNavigator for complex paths
	// Используем PathNavigator для сложных путей
	value, err := ve.pathNavigator.NavigatePath(path, variables)
	if err != nil {
		ve.logger.Debug("Failed to resolve variable path",
			logger.String("path", path),
			logger.String("error", err.Error()))
		return nil, false
	}

	return value, true
}

