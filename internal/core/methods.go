package core

import (
	"regexp"
	"strings"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// NormalizeMethodName trims name and rejects blank names.
func NormalizeMethodName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError(CodeInvalidMethodName, "Informe o nome do método.")
	}
	return name, nil
}

// NormalizeColor returns color as upper-case #RRGGBB. The leading # is
// optional on input.
func NormalizeColor(color string) (string, error) {
	color = strings.ToUpper(strings.TrimSpace(color))
	if color == "" {
		return "", validationError(CodeInvalidColor, "Informe uma cor para o método.")
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !colorPattern.MatchString(color) {
		return "", validationError(CodeInvalidColor, "A cor deve estar no formato hexadecimal, como #1A2B3C.")
	}
	return color, nil
}

func duplicateNameError(err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeDuplicateName,
		Message: "Já existe um método com esse nome.",
		Index:   -1,
		Err:     err,
	}
}
