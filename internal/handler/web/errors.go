package web

import (
	"errors"

	"CPIReg/internal/domain/models"
	xhttp "CPIReg/pkg/http"
)

// appErrorOf maps the pipeline error taxonomy onto HTTP errors.
func appErrorOf(err error) *xhttp.AppError {
	var ife *models.InputFormatError
	if errors.As(err, &ife) {
		return xhttp.UnprocessableError("ERR_INPUT_FORMAT", ife.Column, ife.Error()).WithError(err)
	}

	switch models.KindOf(err) {
	case models.KindInsufficientData:
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", "", err.Error()).WithError(err)
	case models.KindDegenerateInput:
		return xhttp.UnprocessableError("ERR_DEGENERATE_INPUT", "", err.Error()).WithError(err)
	case models.KindDataSource:
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
