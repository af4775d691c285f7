// Package template renders the text/template bodies used for generated node parameters.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var funcs = template.FuncMap{
	// comment flattens text so it fits on one line of a JavaScript comment.
	"comment": func(s string) string {
		s = strings.Join(strings.Fields(s), " ")

		return strings.ReplaceAll(s, "*/", "* /")
	},
	// quote renders s as a JSON string literal, valid in JavaScript too.
	"quote": func(s string) string {
		b, _ := json.Marshal(s)

		return string(b)
	},
	"slug": Slug,
}

// Slug lower-cases s and joins its alphanumeric runs with dashes.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Text executes templateStr and returns the raw output.
func Text(templateStr string, data any) (string, error) {
	tmpl, err := template.New("text").Funcs(funcs).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return buf.String(), nil
}

// Render executes templateStr and converts the trimmed output to a JSON value,
// number or boolean when it parses as one, and a string otherwise.
func Render(templateStr string, data any) (any, error) {
	result, err := Text(templateStr, data)
	if err != nil {
		return nil, err
	}

	result = strings.TrimSpace(result)
	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}
