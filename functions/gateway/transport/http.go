package transport

import (
	"log"
	"net/http"
)

// SendServerRes writes a JSON API response. `err` is logged when status is
// 400 or greater; the body is sent to the client as-is either way.
func SendServerRes(w http.ResponseWriter, body []byte, status int, err error) {
	msg := string(body)
	if status >= 400 {
		internalMsg := "ERR: " + msg
		if err != nil {
			internalMsg += " || Internal error msg: " + err.Error()
		}
		log.Println(internalMsg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, writeErr := w.Write(body); writeErr != nil {
		log.Println("ERR: Error writing response:", writeErr)
	}
}
