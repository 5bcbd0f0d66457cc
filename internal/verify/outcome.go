package verify

import "net/http"

// Outcome es la respuesta empaquetada de un upload. El status HTTP de la
// respuesta es StatusCode.
type Outcome struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func Success(data any) *Outcome {
	return &Outcome{StatusCode: http.StatusOK, Message: "Success", Data: data}
}

func Failure(status int, msg string) *Outcome {
	return &Outcome{StatusCode: status, Message: msg}
}

func (o *Outcome) OK() bool { return o.StatusCode == http.StatusOK }
