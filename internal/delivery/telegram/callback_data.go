package telegram

import "strings"

// Callback action constants.
const (
	actionNext = "next"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	return cd.Action
}

// decodeCallback parses callback data string. Anything after ":" is ignored.
func decodeCallback(data string) callbackData {
	action, _, _ := strings.Cut(data, ":")
	return callbackData{
		Action: action,
		Raw:    data,
	}
}

func buildNextCallback() string {
	return callbackData{Action: actionNext}.encode()
}
