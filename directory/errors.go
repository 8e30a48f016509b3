// ABOUTME: Maps People API, OAuth and transport failures onto the models error taxonomy
// ABOUTME: Reads the service status from the JSON error body when present
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/harperreed/gcard/models"
)

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// classify wraps err in a *models.Error describing op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *models.Error
	if errors.As(err, &typed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		e := models.WrapError(models.CodeAuth, op, err)
		if retrieve.Response != nil {
			e.StatusCode = retrieve.Response.StatusCode
		}
		return e
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status, message := decodeAPIError(apiErr)
		return &models.Error{
			Code:       codeFor(apiErr.Code, status, message),
			Op:         op,
			Message:    message,
			StatusCode: apiErr.Code,
			Status:     status,
		}
	}

	return models.WrapError(models.CodeTransport, op, err)
}

func decodeAPIError(e *googleapi.Error) (status, message string) {
	message = e.Message
	var body apiErrorBody
	if e.Body != "" && json.Unmarshal([]byte(e.Body), &body) == nil {
		status = body.Error.Status
		if body.Error.Message != "" {
			message = body.Error.Message
		}
	}
	return status, message
}

func codeFor(httpStatus int, status, message string) models.ErrorCode {
	switch {
	case httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden:
		return models.CodeAuth
	case httpStatus == http.StatusNotFound:
		return models.CodeNotFound
	case status == "ALREADY_EXISTS" || httpStatus == http.StatusConflict:
		return models.CodeConflict
	case httpStatus == http.StatusPreconditionFailed:
		return models.CodeStaleWrite
	case status == "FAILED_PRECONDITION":
		return models.CodeStaleWrite
	case httpStatus == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "etag"):
		return models.CodeStaleWrite
	}
	return models.CodeRemoteAPI
}
