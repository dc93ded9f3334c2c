package httpx

import (
	"fmt"
	"net/http"

	"github.com/mbolis/survey-nest/log"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, op string, err error) {
	log.Errorf("%s: %s", op, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, op string, id any) {
	log.Debugf("%s: not found (%v)", op, id)
	w.WriteHeader(http.StatusNotFound)
}

// Will log an operation code at the given level, and send
// an HTTP response with the given status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, op string) {
	log.Log(level, op)
	http.Error(w, http.StatusText(status), status)
}

// Will log an operation code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, op string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, op+":", errMsg)
	http.Error(w, errMsg, status)
}

// Will log a rejected user input at debug level, and send
// an HTTP response with status 400 and the formatted reason
func LogValidation(w http.ResponseWriter, op string, msg string, args ...any) {
	LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, op, msg, args...)
}
