package server

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

var defaultBindMessages = bindMessages{
	"GameCode": {
		"required": "game code is required",
		"gamecode": "game code must be 6 letters or digits",
	},
	"PlayerName": {
		"required": "name is required",
	},
	"AnswerText": {
		"required": "answer is required",
	},
	"PlayerID": {
		"required": "playerId is required",
	},
	"IsCorrect": {
		"required": "isCorrect is required",
	},
	"Settings": {
		"required": "settings are required",
	},
	"Lives": {
		"min": "lives cannot be negative",
		"max": "lives exceeds maximum",
	},
	"TotalQuestions": {
		"min": "totalQuestions cannot be negative",
		"max": "totalQuestions exceeds maximum",
	},
}

// bindPayload decodes a message body and runs the binding validators on it.
func bindPayload(data json.RawMessage, req any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := binding.JSON.BindBody(data, req); err != nil {
		return requestError{message: resolveBindError(err, defaultBindMessages, "invalid request")}
	}
	return nil
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
