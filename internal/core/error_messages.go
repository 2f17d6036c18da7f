package core

// error_messages.go maps errors to the message a caller sees.
//
// Core errors (*Error) already carry a caller-facing message; MapError adds
// the suggested action for their code. Anything else reaching the transport
// is a storage failure: its text is matched against known driver patterns so
// the log line and the response share a support code, while the response
// itself only shows a generic message.
//
// # Codes
//
//	DB001 - unique constraint (sqlite "UNIQUE constraint failed", postgres "violates unique")
//	DB004 - connection refused
//	DB005 - connection reset
//	DB006 - timeout / database is locked
//	DB007 - deadlock / serialization failure
//	UPL004 - context canceled
//	UPL005 - context deadline exceeded
//	ERR000 - anything else
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Kind    Kind
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var storageMessage = "Erro ao salvar os dados no banco."

var errorPatterns = []errorPattern{
	{
		pattern: "unique constraint",
		msg:     UserMessage{Kind: KindStorage, Message: storageMessage, Action: "Verifique se o registro já existe.", Code: "DB001"},
	},
	{
		pattern: "violates unique",
		msg:     UserMessage{Kind: KindStorage, Message: storageMessage, Action: "Verifique se o registro já existe.", Code: "DB001"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Kind: KindStorage, Message: "Não foi possível conectar ao banco de dados.", Action: "Tente novamente em alguns instantes.", Code: "DB004"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Kind: KindStorage, Message: "A conexão com o banco de dados foi interrompida.", Action: "Tente novamente.", Code: "DB005"},
	},
	{
		pattern: "database is locked",
		msg:     UserMessage{Kind: KindStorage, Message: "O banco de dados está ocupado.", Action: "Tente novamente.", Code: "DB006"},
	},
	{
		pattern: "timeout",
		msg:     UserMessage{Kind: KindStorage, Message: "A operação excedeu o tempo limite.", Action: "Tente novamente.", Code: "DB006"},
	},
	{
		pattern: "deadlock",
		msg:     UserMessage{Kind: KindStorage, Message: "O banco de dados estava ocupado com operações conflitantes.", Action: "Tente novamente.", Code: "DB007"},
	},
	{
		pattern: "could not serialize",
		msg:     UserMessage{Kind: KindStorage, Message: "O banco de dados estava ocupado com operações conflitantes.", Action: "Tente novamente.", Code: "DB007"},
	},
	{
		pattern: "context canceled",
		msg:     UserMessage{Kind: KindStorage, Message: "A requisição foi cancelada.", Action: "Tente novamente.", Code: "UPL004"},
	},
	{
		pattern: "context deadline exceeded",
		msg:     UserMessage{Kind: KindStorage, Message: "A requisição excedeu o tempo limite.", Action: "Tente novamente.", Code: "UPL005"},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Kind:    KindStorage,
	Message: storageMessage,
	Action:  "Tente novamente ou contate o suporte.",
	Code:    "ERR000",
}

// codeActions holds the suggested action for each core error code.
var codeActions = map[Code]string{
	CodeInvalidPayload:      "Envie o conteúdo no formato JSON esperado.",
	CodeEmptyInput:          "Cole o conteúdo do CSV antes de enviar.",
	CodeDuplicateColumns:    "Renomeie o cabeçalho e tente novamente.",
	CodeMissingColumns:      "Inclua todas as colunas obrigatórias no cabeçalho.",
	CodeColumnCountMismatch: "Confira se todas as linhas têm o mesmo número de colunas do cabeçalho.",
	CodeNoValidRows:         "Inclua ao menos uma linha de jogo.",
	CodeInvalidDate:         "Use datas como 2024-05-10 ou 10/05/2024.",
	CodeMissingMatchDate:    "Selecione a data dos jogos antes de enviar.",
	CodeRecordNotFound:      "Recarregue a lista de jogos.",
	CodeMissingMethod:       "Escolha um método para cada jogo selecionado.",
	CodeUnknownMethod:       "Escolha um método cadastrado.",
	CodeInvalidGoalsValue:   "Use um número como 2,5 ou 2.5.",
	CodeInvalidLink:         "Informe um endereço http ou https.",
	CodeInvalidMethodName:   "Informe o nome do método.",
	CodeInvalidColor:        "Use uma cor hexadecimal, como #1A2B3C.",
	CodeDuplicateName:       "Escolha outro nome para o método.",
}

// MapError converts an error to a user-friendly message.
//
// Core validation errors keep their own message. Storage errors (and
// anything unrecognised) are matched against known driver patterns; if no
// pattern matches, a generic fallback with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var e *Error
	if errors.As(err, &e) && e.Kind != KindStorage {
		return UserMessage{
			Kind:    e.Kind,
			Message: e.Message,
			Action:  codeActions[e.Code],
			Code:    string(e.Code),
		}
	}

	errStr := strings.ToLower(err.Error())
	if e != nil && e.Err != nil {
		errStr += ": " + strings.ToLower(e.Detail())
	}
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if e != nil && e.Message != "" {
		msg := defaultMessage
		msg.Message = e.Message
		return msg
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
